package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"job-board/internal/model"
	"job-board/internal/store"
)

// Client 实现与后端的 CRUD 同步契约：所有变更先经后端确认，
// 再把后端返回的规范记录打补丁到本地集合，失败时本地不动。
type Client struct {
	baseURL string
	client  *http.Client
	store   *store.Store
}

// New 创建客户端，baseURL 形如 http://localhost:8080，httpClient 为 nil 时用默认值。
func New(baseURL string, st *store.Store, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  httpClient,
		store:   st,
	}
}

// Store 返回绑定的本地集合。
func (c *Client) Store() *store.Store { return c.store }

// Load 全量拉取并替换本地集合，实现 store.Lister 所需的初始加载。
func (c *Client) Load(ctx context.Context) error {
	return c.store.Load(ctx, c)
}

// ListJobs 不带筛选地拉取全部记录，满足 store.Lister。
func (c *Client) ListJobs(ctx context.Context) ([]model.Job, error) {
	return c.FetchJobs(ctx, model.Filter{})
}

// FetchJobs 按筛选条件拉取记录，条件字段逐个映射为查询参数，哨兵值省略。
func (c *Client) FetchJobs(ctx context.Context, f model.Filter) ([]model.Job, error) {
	params := url.Values{}
	if f.Keyword != "" {
		params.Set("keyword", f.Keyword)
	}
	if f.JobType != "" && f.JobType != model.All {
		params.Set("job_type", f.JobType)
	}
	if f.Location != "" && f.Location != model.All {
		params.Set("location", f.Location)
	}
	for _, tag := range f.Tags {
		params.Add("tag", tag)
	}
	if f.Sort != "" {
		params.Set("sort", string(f.Sort))
	}

	path := "/api/jobs"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var jobs []model.Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return nil, fmt.Errorf("decode job list: %w", err)
	}
	return jobs, nil
}

// CreateJob 发送不含 ID 的候选记录；成功后把后端返回的完整记录
// （而非本地草稿）写入集合，保证展示内容与后端认定的规范形式一致。
func (c *Client) CreateJob(ctx context.Context, draft Draft) (model.Job, error) {
	if err := draft.validate(); err != nil {
		return model.Job{}, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/jobs", draft.payload())
	if err != nil {
		return model.Job{}, err
	}
	defer resp.Body.Close()

	var created model.Job
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return model.Job{}, fmt.Errorf("decode created job: %w", err)
	}

	c.store.Insert(created)
	return created, nil
}

// UpdateJob 重发完整字段集（不支持部分更新）；成功后用后端返回的记录
// 覆盖本地记录。若并发删除已先落地，本地 Replace 返回 ErrNotFound 并原样
// 上抛，集合不动——同一 ID 上竞争的变更采用后到响应生效。
func (c *Client) UpdateJob(ctx context.Context, id uint, draft Draft) (model.Job, error) {
	if err := draft.validate(); err != nil {
		return model.Job{}, err
	}

	resp, err := c.do(ctx, http.MethodPut, "/api/jobs/"+strconv.FormatUint(uint64(id), 10), draft.payload())
	if err != nil {
		return model.Job{}, err
	}
	defer resp.Body.Close()

	var updated model.Job
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return model.Job{}, fmt.Errorf("decode updated job: %w", err)
	}

	if err := c.store.Replace(id, updated); err != nil {
		return model.Job{}, err
	}
	return updated, nil
}

// DeleteJob 删除记录。后端 404（已不存在）按成功处理，随后本地 Remove
// 本就是无操作；其余非 2xx 返回 FetchError，本地不动。
func (c *Client) DeleteJob(ctx context.Context, id uint) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/jobs/"+strconv.FormatUint(uint64(id), 10), nil)
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && fetchErr.Status == http.StatusNotFound {
			c.store.Remove(id)
			return nil
		}
		return err
	}
	resp.Body.Close()

	c.store.Remove(id)
	return nil
}

// do 构造请求并执行，非 2xx 统一转为 FetchError。
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Message: "backend unreachable", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, errorFromResponse(resp)
	}
	return resp, nil
}

// errorFromResponse 优先取 JSON 错误体的 message/error 字段，否则退回状态行。
func errorFromResponse(resp *http.Response) *FetchError {
	fe := &FetchError{Status: resp.StatusCode, Message: resp.Status}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fe
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			fe.Message = body.Message
		} else if body.Error != "" {
			fe.Message = body.Error
		}
	}
	return fe
}
