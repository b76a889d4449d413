package model

import (
	"time"

	"gorm.io/datatypes"
)

// JobType 职位类型枚举，与筛选控件保持一致。
type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
)

// JobTypes 返回全部合法职位类型，用于填充筛选控件与校验。
func JobTypes() []JobType {
	return []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship}
}

// Valid 判断职位类型是否为枚举值之一。
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	}
	return false
}

// Job 表示一条招聘记录
// - ID: 后端分配的唯一标识，客户端不生成
// - Title/Company/Location: 必填文本字段
// - Salary/Description: 可选补充信息
// - PostingDate: 发布日期，精确到天，用于排序
// - Tags: 有序标签列表，允许重复与空列表，JSON 列存储
// - CreatedAt/UpdatedAt: 由 GORM 自动维护

type Job struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `json:"title"`
	Company     string                      `json:"company"`
	Location    string                      `json:"location"`
	Salary      string                      `json:"salary,omitempty"`
	Description string                      `json:"description,omitempty"`
	JobType     JobType                     `json:"job_type"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	PostingDate Date                        `json:"posting_date"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}
