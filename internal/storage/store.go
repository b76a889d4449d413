package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"job-board/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrNotFound 表示数据库中不存在该 ID 的记录。
var ErrNotFound = errors.New("job not found")

// Store 封装 SQLite 数据库访问，负责招聘记录的增删改查与批量导入。
type Store struct {
	db *gorm.DB
}

// JobQuery 提供列表查询的过滤与排序条件，零值表示不过滤。
type JobQuery struct {
	Keyword  string
	JobType  string
	Location string
	Tags     []string
	Sort     model.SortOrder
}

// BulkImportResult 表示批量导入结果。
type BulkImportResult struct {
	Created int
	Skipped int
}

// NewStore 创建 Store 并自动迁移数据表。
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&model.Job{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭底层数据库连接。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// ListJobs 返回满足条件的记录，默认按发布日期倒序，同日期按 ID 升序保持稳定。
func (s *Store) ListJobs(ctx context.Context, q JobQuery) ([]model.Job, error) {
	var jobs []model.Job

	order := "posting_date DESC, id ASC"
	if q.Sort == model.SortDateAsc {
		order = "posting_date ASC, id ASC"
	}

	query := applyJobFilters(s.db.WithContext(ctx).Model(&model.Job{}), q).Order(order)
	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// GetJob 根据 ID 获取记录。
func (s *Store) GetJob(ctx context.Context, id uint) (*model.Job, error) {
	var job model.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// CreateJob 写入一条新记录并回填分配的 ID。
func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// UpdateJob 以完整字段集覆盖指定记录（不支持部分更新），返回更新后的记录。
func (s *Store) UpdateJob(ctx context.Context, id uint, job model.Job) (*model.Job, error) {
	var existing model.Job
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load job for update: %w", err)
	}

	existing.Title = job.Title
	existing.Company = job.Company
	existing.Location = job.Location
	existing.Salary = job.Salary
	existing.Description = job.Description
	existing.JobType = job.JobType
	existing.Tags = job.Tags
	if !job.PostingDate.IsZero() {
		existing.PostingDate = job.PostingDate
	}

	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return &existing, nil
}

// DeleteJob 删除指定记录，不存在时返回 ErrNotFound。
func (s *Store) DeleteJob(ctx context.Context, id uint) error {
	tx := s.db.WithContext(ctx).Delete(&model.Job{}, "id = ?", id)
	if tx.Error != nil {
		return fmt.Errorf("delete job: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkImportJobs 批量写入抓取数据，已存在同标题加同公司的记录跳过不覆盖。
func (s *Store) BulkImportJobs(ctx context.Context, jobs []model.Job) (BulkImportResult, error) {
	res := BulkImportResult{}
	for i := range jobs {
		job := jobs[i]
		job.ID = 0

		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Job{}).
			Where("title = ? AND company = ?", job.Title, job.Company).
			Count(&count).Error; err != nil {
			return res, fmt.Errorf("check existing job: %w", err)
		}
		if count > 0 {
			res.Skipped++
			continue
		}

		if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
			return res, fmt.Errorf("bulk create job: %w", err)
		}
		res.Created++
	}
	return res, nil
}

func applyJobFilters(db *gorm.DB, q JobQuery) *gorm.DB {
	if keyword := strings.TrimSpace(q.Keyword); keyword != "" {
		pattern := "%" + strings.ToLower(keyword) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(company) LIKE ?", pattern, pattern)
	}
	if q.JobType != "" && q.JobType != model.All {
		db = db.Where("job_type = ?", q.JobType)
	}
	if q.Location != "" && q.Location != model.All {
		db = db.Where("location = ?", q.Location)
	}
	if len(q.Tags) > 0 {
		// 标签为 OR 语义：命中任一选中标签即通过。
		clauses := make([]string, 0, len(q.Tags))
		args := make([]any, 0, len(q.Tags))
		for _, tag := range q.Tags {
			if tag == "" {
				continue
			}
			clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value = ?)")
			args = append(args, tag)
		}
		if len(clauses) > 0 {
			db = db.Where(strings.Join(clauses, " OR "), args...)
		}
	}
	return db
}
