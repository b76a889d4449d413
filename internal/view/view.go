package view

import (
	"sort"
	"strings"

	"job-board/internal/model"
)

// Facets 聚合全量集合的可选筛选值。
type Facets struct {
	Locations []string `json:"locations"`
	Tags      []string `json:"tags"`
}

// Project 对集合快照应用筛选与排序，返回展示序列。
// 各阶段按固定顺序收窄候选集：关键字 → 职位类型 → 地点 → 标签 → 稳定排序。
// 对同一快照与同一条件，结果逐字节一致。
func Project(jobs []model.Job, f model.Filter) []model.Job {
	out := make([]model.Job, 0, len(jobs))

	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))
	for _, job := range jobs {
		if keyword != "" && !matchesKeyword(job, keyword) {
			continue
		}
		if f.JobType != "" && f.JobType != model.All && string(job.JobType) != f.JobType {
			continue
		}
		if f.Location != "" && f.Location != model.All && job.Location != f.Location {
			continue
		}
		if len(f.Tags) > 0 && !matchesAnyTag(job, f.Tags) {
			continue
		}
		out = append(out, job)
	}

	// 日期相同的记录保持过滤阶段的相对顺序，稳定性是可观测契约。
	sort.SliceStable(out, func(i, j int) bool {
		if f.Sort == model.SortDateAsc {
			return out[i].PostingDate.Before(out[j].PostingDate)
		}
		return out[i].PostingDate.After(out[j].PostingDate)
	})

	return out
}

// ProjectFacets 从全量集合（而非过滤后的子集）推导筛选控件选项，
// 放宽条件时选项不会消失。两个列表都去重并按字典序升序。
func ProjectFacets(jobs []model.Job) Facets {
	locations := make(map[string]struct{})
	tags := make(map[string]struct{})
	for _, job := range jobs {
		if job.Location != "" {
			locations[job.Location] = struct{}{}
		}
		for _, tag := range job.Tags {
			if tag != "" {
				tags[tag] = struct{}{}
			}
		}
	}
	return Facets{
		Locations: sortedKeys(locations),
		Tags:      sortedKeys(tags),
	}
}

// 关键字只匹配标题或公司，大小写不敏感。
func matchesKeyword(job model.Job, keyword string) bool {
	return strings.Contains(strings.ToLower(job.Title), keyword) ||
		strings.Contains(strings.ToLower(job.Company), keyword)
}

// 标签为 OR 语义：记录命中任一选中标签即通过。
func matchesAnyTag(job model.Job, selected []string) bool {
	for _, want := range selected {
		for _, have := range job.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
