package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"job-board/internal/model"
	"job-board/internal/storage"
)

// Store 抽象存储接口。
type Store interface {
	ListJobs(ctx context.Context, q storage.JobQuery) ([]model.Job, error)
	GetJob(ctx context.Context, id uint) (*model.Job, error)
	CreateJob(ctx context.Context, job *model.Job) error
	UpdateJob(ctx context.Context, id uint, job model.Job) (*model.Job, error)
	DeleteJob(ctx context.Context, id uint) error
	BulkImportJobs(ctx context.Context, jobs []model.Job) (storage.BulkImportResult, error)
}

// Scheduler 抽象调度接口，手动刷新时触发一次抓取导入。
type Scheduler interface {
	RunOnce(ctx context.Context) (int, error)
}

// jobRequest 表示创建与更新请求体，不含 ID。
type jobRequest struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Salary      string     `json:"salary"`
	Description string     `json:"description"`
	JobType     string     `json:"job_type"`
	Tags        []string   `json:"tags"`
	PostingDate model.Date `json:"posting_date"`
}

// NewHandler 构造 HTTP 多路复用器。
func NewHandler(store Store, sched Scheduler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listJobs(w, r, store)
		case http.MethodPost:
			createJob(w, r, store)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/jobs/bulk", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		bulkImport(w, r, store)
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJobID(r.URL.Path)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid job id"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			getJob(w, r, store, id)
		case http.MethodPut:
			updateJob(w, r, store, id)
		case http.MethodDelete:
			deleteJob(w, r, store, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if sched == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "scraper disabled"})
			return
		}
		created, err := sched.RunOnce(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"created": created})
	})

	return mux
}

func listJobs(w http.ResponseWriter, r *http.Request, store Store) {
	q := storage.JobQuery{
		Keyword:  r.URL.Query().Get("keyword"),
		JobType:  r.URL.Query().Get("job_type"),
		Location: r.URL.Query().Get("location"),
		Tags:     r.URL.Query()["tag"],
	}
	switch r.URL.Query().Get("sort") {
	case string(model.SortDateAsc):
		q.Sort = model.SortDateAsc
	default:
		q.Sort = model.SortDateDesc
	}

	jobs, err := store.ListJobs(r.Context(), q)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func createJob(w http.ResponseWriter, r *http.Request, store Store) {
	req, ok := decodeJobRequest(w, r)
	if !ok {
		return
	}

	job := req.toJob()
	if job.PostingDate.IsZero() {
		job.PostingDate = model.DateOf(time.Now().UTC())
	}
	if err := store.CreateJob(r.Context(), &job); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func getJob(w http.ResponseWriter, r *http.Request, store Store, id uint) {
	job, err := store.GetJob(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func updateJob(w http.ResponseWriter, r *http.Request, store Store, id uint) {
	req, ok := decodeJobRequest(w, r)
	if !ok {
		return
	}

	updated, err := store.UpdateJob(r.Context(), id, req.toJob())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func deleteJob(w http.ResponseWriter, r *http.Request, store Store, id uint) {
	if err := store.DeleteJob(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Job deleted successfully"})
}

func bulkImport(w http.ResponseWriter, r *http.Request, store Store) {
	var reqs []jobRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "expected a list of job objects"})
		return
	}

	jobs := make([]model.Job, 0, len(reqs))
	for _, req := range reqs {
		jobs = append(jobs, req.toJob())
	}

	res, err := store.BulkImportJobs(r.Context(), jobs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"created": res.Created, "skipped": res.Skipped})
}

// decodeJobRequest 解析并校验请求体，失败时已写出响应。
func decodeJobRequest(w http.ResponseWriter, r *http.Request) (jobRequest, bool) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid payload"})
		return req, false
	}

	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"title", req.Title},
		{"company", req.Company},
		{"location", req.Location},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Missing required fields: " + strings.Join(missing, ", "),
		})
		return req, false
	}

	if req.JobType != "" && !model.JobType(req.JobType).Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Invalid job_type: " + req.JobType,
		})
		return req, false
	}

	return req, true
}

func (req jobRequest) toJob() model.Job {
	jobType := model.JobType(req.JobType)
	if req.JobType == "" {
		jobType = model.JobTypeFullTime
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}

	return model.Job{
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		Salary:      req.Salary,
		Description: req.Description,
		JobType:     jobType,
		Tags:        tags,
		PostingDate: req.PostingDate,
	}
}

func parseJobID(path string) (uint, bool) {
	raw := strings.TrimPrefix(path, "/api/jobs/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Job not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
