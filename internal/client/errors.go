package client

import (
	"fmt"
	"strings"
)

// FetchError 表示传输失败或后端返回非 2xx 状态。
// 可通过重试恢复，且从不破坏本地集合。
type FetchError struct {
	Status  int
	Message string
	Err     error
}

// Error 实现 error。
func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("backend request failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend request failed: %s", e.Message)
}

// Unwrap 暴露底层传输错误。
func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError 表示草稿在发起网络调用前就被判为畸形。
type ValidationError struct {
	Missing []string
	Reason  string
}

// Error 实现 error。
func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return "invalid job draft: " + e.Reason
}
