package view

import (
	"sync"

	"job-board/internal/model"
	"job-board/internal/store"
)

// Projector 绑定一个 Store 与当前筛选条件，按 Store 版本号记忆化投影结果。
// 记忆化仅是优化：每次失效后的重算都等价于直接调用 Project/ProjectFacets。
type Projector struct {
	store *store.Store

	mu         sync.Mutex
	filter     model.Filter
	jobsRev    uint64
	jobs       []model.Job
	jobsValid  bool
	facetRev   uint64
	facets     Facets
	facetValid bool
}

// NewProjector 创建投影器，初始条件为默认筛选。
func NewProjector(st *store.Store) *Projector {
	return &Projector{store: st, filter: model.DefaultFilter()}
}

// SetFilter 更新筛选条件并使已缓存的投影失效，facet 缓存不受影响。
func (p *Projector) SetFilter(f model.Filter) {
	p.mu.Lock()
	p.filter = f
	p.jobsValid = false
	p.mu.Unlock()
}

// Filter 返回当前筛选条件。
func (p *Projector) Filter() model.Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// Jobs 返回当前筛选与排序后的展示序列，返回切片归投影器所有，调用方不应修改。
func (p *Projector) Jobs() []model.Job {
	rev := p.store.Revision()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.jobsValid && p.jobsRev == rev {
		return p.jobs
	}
	p.jobs = Project(p.store.Snapshot(), p.filter)
	p.jobsRev = rev
	p.jobsValid = true
	return p.jobs
}

// Facets 返回全量集合推导出的筛选选项。
func (p *Projector) Facets() Facets {
	rev := p.store.Revision()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.facetValid && p.facetRev == rev {
		return p.facets
	}
	p.facets = ProjectFacets(p.store.Snapshot())
	p.facetRev = rev
	p.facetValid = true
	return p.facets
}
