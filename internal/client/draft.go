package client

import (
	"strings"

	"job-board/internal/model"
)

// Draft 表示用户填写的候选记录，不含 ID，ID 始终由后端分配。
type Draft struct {
	Title       string
	Company     string
	Location    string
	Salary      string
	Description string
	JobType     model.JobType
	PostingDate model.Date
	Tags        []string
}

// payload 构造发往后端的请求体，标签逐个修剪并丢弃空串。
func (d Draft) payload() map[string]any {
	tags := make([]string, 0, len(d.Tags))
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}

	body := map[string]any{
		"title":        strings.TrimSpace(d.Title),
		"company":      strings.TrimSpace(d.Company),
		"location":     strings.TrimSpace(d.Location),
		"job_type":     d.JobType,
		"tags":         tags,
		"posting_date": d.PostingDate,
	}
	if d.Salary != "" {
		body["salary"] = d.Salary
	}
	if d.Description != "" {
		body["description"] = d.Description
	}
	return body
}

// validate 在发起任何网络调用前拒绝畸形草稿。
func (d Draft) validate() error {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(d.Location) == "" {
		missing = append(missing, "location")
	}
	if d.PostingDate.IsZero() {
		missing = append(missing, "posting_date")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if !d.JobType.Valid() {
		return &ValidationError{Reason: "unknown job type " + string(d.JobType)}
	}
	return nil
}
