package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"job-board/internal/model"
	"job-board/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Config 用于调度配置。
type Config struct {
	Interval string `yaml:"interval" json:"interval"`
	Timeout  string `yaml:"timeout" json:"timeout"`
}

// Scraper 抓取统一接口，便于测试替换。
type Scraper interface {
	Scrape(ctx context.Context) ([]model.Job, error)
}

// Importer 抽象批量导入接口。
type Importer interface {
	BulkImportJobs(ctx context.Context, jobs []model.Job) (storage.BulkImportResult, error)
}

// Scheduler 周期性抓取列表页并导入存储。
type Scheduler struct {
	scraper   Scraper
	importer  Importer
	interval  time.Duration
	timeout   time.Duration
	running   atomic.Bool
	newTicker func(time.Duration) ticker
	logger    *log.Logger
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewScheduler 创建 Scheduler，解析配置的间隔与超时。
func NewScheduler(s Scraper, imp Importer, cfg Config) *Scheduler {
	interval := 6 * time.Hour
	if cfg.Interval != "" {
		if d, err := time.ParseDuration(cfg.Interval); err == nil && d > 0 {
			interval = d
		}
	}
	timeout := 60 * time.Second
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Scheduler{
		scraper:   s,
		importer:  imp,
		interval:  interval,
		timeout:   timeout,
		newTicker: defaultTicker,
		logger:    log.New(os.Stdout, "[scheduler] ", log.LstdFlags),
	}
}

// Start 启动调度循环，直到上下文取消。
func (s *Scheduler) Start(ctx context.Context) error {
	if s.scraper == nil || s.importer == nil {
		return fmt.Errorf("scheduler missing dependencies")
	}

	g, ctx := errgroup.WithContext(ctx)

	tick := s.newTicker(s.interval)
	ch := tick.C()

	g.Go(func() error {
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ch:
				if _, err := s.runOnce(ctx); err != nil {
					s.logger.Printf("scheduled run failed: %v", err)
				}
			drain:
				for {
					select {
					case <-ch:
						continue
					default:
						break drain
					}
				}
			}
		}
	})

	return g.Wait()
}

// RunOnce 对外暴露单次抓取导入接口，供手动刷新端点使用。
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	return s.runOnce(ctx)
}

// 同一时刻至多一次抓取在跑，重入直接返回。
func (s *Scheduler) runOnce(ctx context.Context) (int, error) {
	if s.running.Swap(true) {
		return 0, nil
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	jobs, err := s.scraper.Scrape(ctx)
	if err != nil {
		return 0, fmt.Errorf("scrape jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	res, err := s.importer.BulkImportJobs(ctx, jobs)
	if err != nil {
		return 0, fmt.Errorf("import jobs: %w", err)
	}

	s.logger.Printf("import done created=%d skipped=%d", res.Created, res.Skipped)
	return res.Created, nil
}

func defaultTicker(d time.Duration) ticker {
	t := time.NewTicker(d)
	return tickerWrapper{t}
}

type tickerWrapper struct {
	*time.Ticker
}

func (t tickerWrapper) C() <-chan time.Time { return t.Ticker.C }
func (t tickerWrapper) Stop()               { t.Ticker.Stop() }
