package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout 发布日期的统一线上格式，精确到天。
const DateLayout = "2006-01-02"

// Date 表示一个按天计的日历日期，JSON 与数据库均序列化为 YYYY-MM-DD。
type Date struct {
	t time.Time
}

// NewDate 按年月日构造日期。
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf 截断时间戳到天。
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate 解析 YYYY-MM-DD 文本。
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return Date{t: t}, nil
}

// IsZero 判断是否为零值日期。
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before 判断 d 是否早于 other。
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After 判断 d 是否晚于 other。
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal 判断两个日期是否同一天。
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// Time 返回底层 UTC 零点时间。
func (d Date) Time() time.Time { return d.t }

// String 输出 YYYY-MM-DD。
func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON 输出 "YYYY-MM-DD"，零值输出空串。
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON 接受 "YYYY-MM-DD"，空串与 null 视为零值。
func (d *Date) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	if text == "" || text == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(text)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType 告知迁移器列类型。
func (Date) GormDataType() string { return "date" }

// Value 实现 driver.Valuer，按文本写库，保证字典序即时间序。
func (d Date) Value() (driver.Value, error) {
	if d.t.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan 实现 sql.Scanner，接受文本或时间列。
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		if v == "" {
			*d = Date{}
			return nil
		}
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = DateOf(v)
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}
