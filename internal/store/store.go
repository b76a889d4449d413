package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"job-board/internal/model"
)

// ErrNotFound 表示本地集合中不存在该 ID 的记录。
var ErrNotFound = errors.New("job not found in local collection")

// Lister 定义全量拉取接口，由 REST 客户端实现。
type Lister interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
}

// Subscriber 在集合每次成功变更后收到通知。
type Subscriber interface {
	CollectionChanged()
}

// SubscriberFunc 函数适配器。
type SubscriberFunc func()

// CollectionChanged 实现 Subscriber。
func (f SubscriberFunc) CollectionChanged() { f() }

// Store 持有招聘记录的权威本地副本。
// 集合以一次全量拉取初始化，之后仅通过确认成功的增删改打补丁；
// 所有变更对下一次读取原子可见，且保证同一 ID 至多出现一次。
type Store struct {
	mu       sync.RWMutex
	jobs     []model.Job
	loaded   bool
	revision uint64
	subs     []Subscriber
}

// NewStore 创建空集合，loaded 状态为 false，区别于“已加载但为空”。
func NewStore() *Store {
	return &Store{}
}

// Subscribe 注册变更订阅者，nil 订阅者被忽略。
func (s *Store) Subscribe(sub Subscriber) {
	if sub == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
}

// Load 全量替换集合内容，可重复调用（替换而非合并）。
// 拉取失败时本地内容保持不变，错误原样返回给调用方。
func (s *Store) Load(ctx context.Context, lister Lister) error {
	if lister == nil {
		return fmt.Errorf("load: lister is nil")
	}

	jobs, err := lister.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}

	s.mu.Lock()
	s.jobs = make([]model.Job, len(jobs))
	copy(s.jobs, jobs)
	s.loaded = true
	s.revision++
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
	return nil
}

// Insert 加入一条后端确认后的新记录，对后续读取立即可见。
// 若该 ID 已存在则原地覆盖，维持唯一 ID 不变量。
func (s *Store) Insert(job model.Job) {
	s.mu.Lock()
	replaced := false
	for i := range s.jobs {
		if s.jobs[i].ID == job.ID {
			s.jobs[i] = job
			replaced = true
			break
		}
	}
	if !replaced {
		s.jobs = append(s.jobs, job)
	}
	s.revision++
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

// Replace 覆盖指定 ID 的记录。本地不存在时返回 ErrNotFound，
// 集合保持不变；存在性以后端响应为准，这里只是本地一致性检查。
func (s *Store) Replace(id uint, job model.Job) error {
	s.mu.Lock()
	idx := -1
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("replace job %d: %w", id, ErrNotFound)
	}
	job.ID = id
	s.jobs[idx] = job
	s.revision++
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
	return nil
}

// Remove 删除指定 ID 的记录，本地不存在时为无操作且不报错。
func (s *Store) Remove(id uint) {
	s.mu.Lock()
	idx := -1
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.jobs = append(s.jobs[:idx], s.jobs[idx+1:]...)
	s.revision++
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs)
}

// Snapshot 返回当前集合的副本，调用方可自由修改。
func (s *Store) Snapshot() []model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// Get 按 ID 查找记录副本。
func (s *Store) Get(id uint) (model.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return s.jobs[i], true
		}
	}
	return model.Job{}, false
}

// Loaded 区分“加载中”与“已加载为空”两种状态。
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Len 返回当前记录数。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Revision 单调递增的版本号，每次成功变更加一，供投影端做廉价失效判断。
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) snapshotSubsLocked() []Subscriber {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]Subscriber, len(s.subs))
	copy(out, s.subs)
	return out
}

// 通知在锁外进行，订阅者回调里允许再读取 Store。
func notify(subs []Subscriber) {
	for _, sub := range subs {
		sub.CollectionChanged()
	}
}
