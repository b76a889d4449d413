package model

// All 哨兵值，表示不按该字段过滤。
const All = "All"

// SortOrder 排序方向。
type SortOrder string

const (
	SortDateDesc SortOrder = "date_desc"
	SortDateAsc  SortOrder = "date_asc"
)

// Filter 描述一次投影的筛选与排序条件，仅存在于客户端，不落库。
// - Keyword: 大小写不敏感的子串，匹配标题或公司，空串表示不过滤
// - JobType/Location: 精确匹配，哨兵值 All 表示不过滤
// - Tags: OR 语义的标签集合，空集合表示不过滤
// - Sort: 按发布日期排序方向
type Filter struct {
	Keyword  string
	JobType  string
	Location string
	Tags     []string
	Sort     SortOrder
}

// DefaultFilter 返回应用启动时的初始筛选条件。
func DefaultFilter() Filter {
	return Filter{
		Keyword:  "",
		JobType:  All,
		Location: All,
		Tags:     nil,
		Sort:     SortDateDesc,
	}
}
