package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"job-board/internal/api"
	"job-board/internal/scheduler"
	"job-board/internal/scraper"
	"job-board/internal/storage"
)

// AppConfig 应用配置。
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scraper  scraper.Config `yaml:"scraper"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("load config error: %v", err)
		return
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = "jobs.db"
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		log.Printf("init store error: %v", err)
		return
	}
	defer store.Close()

	client := &http.Client{Timeout: 30 * time.Second}
	scr := scraper.New(cfg.Scraper, client)
	sched := scheduler.NewScheduler(scr, store, scheduler.Config{Interval: cfg.Scraper.Interval, Timeout: "60s"})

	handler := api.NewHandler(store, sched)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 未配置抓取间隔时只保留手动刷新端点。
	if cfg.Scraper.Interval != "" {
		go func() {
			if err := sched.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("scheduler stopped: %v", err)
			}
		}()
	}

	log.Printf("listening on %s", addr)
	if err := runServer(ctx, srv, 5*time.Second); err != nil {
		log.Printf("server error: %v", err)
	}
}

// runServer 启动 HTTP 服务并在上下文取消时优雅关闭。
func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func loadConfig() (AppConfig, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && os.Getenv("CONFIG_FILE") == "" {
			return AppConfig{}, nil
		}
		return AppConfig{}, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
