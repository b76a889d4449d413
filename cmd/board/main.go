package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"job-board/internal/client"
	"job-board/internal/model"
	"job-board/internal/store"
	"job-board/internal/view"
)

// 终端版看板：加载集合、应用筛选投影、执行增删改，
// 作为 REST 客户端、Collection Store 与投影引擎的装配示例。
func main() {
	var (
		apiURL    = flag.String("api", "http://localhost:8080", "backend base URL")
		op        = flag.String("op", "list", "operation: list | add | update | delete")
		jobID     = flag.Uint("id", 0, "job id for update / delete")
		keyword   = flag.String("keyword", "", "keyword filter (title or company)")
		jobType   = flag.String("type", model.All, "job type filter or All")
		location  = flag.String("location", model.All, "location filter or All")
		tags      = flag.String("tags", "", "comma separated tag filter (OR)")
		sortOrder = flag.String("sort", string(model.SortDateDesc), "date_desc | date_asc")

		title    = flag.String("title", "", "job title (add / update)")
		company  = flag.String("company", "", "company name (add / update)")
		jobLoc   = flag.String("job-location", "", "job location (add / update)")
		salary   = flag.String("salary", "", "salary text (add / update)")
		jobTags  = flag.String("job-tags", "", "comma separated tags (add / update)")
		posted   = flag.String("posted", "", "posting date YYYY-MM-DD, default today")
		jobTypeF = flag.String("job-type", string(model.JobTypeFullTime), "job type (add / update)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[board] ", log.LstdFlags)

	st := store.NewStore()
	st.Subscribe(store.SubscriberFunc(func() {
		logger.Printf("collection updated: %d jobs", st.Len())
	}))
	c := client.New(*apiURL, st, &http.Client{Timeout: 15 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filter := model.Filter{
		Keyword:  *keyword,
		JobType:  *jobType,
		Location: *location,
		Tags:     splitTags(*tags),
		Sort:     model.SortOrder(*sortOrder),
	}

	if err := run(ctx, c, *op, *jobID, filter, client.Draft{
		Title:       *title,
		Company:     *company,
		Location:    *jobLoc,
		Salary:      *salary,
		JobType:     model.JobType(*jobTypeF),
		PostingDate: parsePostedFlag(*posted),
		Tags:        splitTags(*jobTags),
	}, os.Stdout, logger); err != nil {
		logger.Printf("error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, op string, id uint, filter model.Filter, draft client.Draft, out io.Writer, logger *log.Logger) error {
	if err := c.Load(ctx); err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}

	switch op {
	case "list":
	case "add":
		created, err := c.CreateJob(ctx, draft)
		if err != nil {
			return err
		}
		logger.Printf("job added successfully (id %d)", created.ID)
	case "update":
		if id == 0 {
			return fmt.Errorf("update requires -id")
		}
		updated, err := c.UpdateJob(ctx, id, draft)
		if err != nil {
			return err
		}
		logger.Printf("job updated successfully (id %d)", updated.ID)
	case "delete":
		if id == 0 {
			return fmt.Errorf("delete requires -id")
		}
		if err := c.DeleteJob(ctx, id); err != nil {
			return err
		}
		logger.Printf("job deleted successfully (id %d)", id)
	default:
		return fmt.Errorf("unknown operation %q", op)
	}

	p := view.NewProjector(c.Store())
	p.SetFilter(filter)
	renderBoard(out, p, c.Store().Len())
	return nil
}

// renderBoard 输出投影结果与可选筛选值。
func renderBoard(out io.Writer, p *view.Projector, total int) {
	jobs := p.Jobs()
	facets := p.Facets()

	fmt.Fprintf(out, "Showing %d of %d jobs\n", len(jobs), total)
	for _, job := range jobs {
		line := fmt.Sprintf("#%-4d %s  %s | %s | %s | %s", job.ID, job.PostingDate, job.Title, job.Company, job.Location, job.JobType)
		if len(job.Tags) > 0 {
			line += " [" + strings.Join(job.Tags, ", ") + "]"
		}
		fmt.Fprintln(out, line)
	}
	if len(facets.Locations) > 0 {
		fmt.Fprintf(out, "Locations: %s\n", strings.Join(facets.Locations, ", "))
	}
	if len(facets.Tags) > 0 {
		fmt.Fprintf(out, "Tags: %s\n", strings.Join(facets.Tags, ", "))
	}
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tags = append(tags, part)
	}
	return tags
}

func parsePostedFlag(raw string) model.Date {
	if strings.TrimSpace(raw) == "" {
		return model.DateOf(time.Now().UTC())
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.DateOf(time.Now().UTC())
	}
	return d
}
