package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"job-board/internal/model"

	"golang.org/x/net/html"
)

// Config 定义抓取配置。
type Config struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	MaxPages   int    `yaml:"max_pages" json:"max_pages"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	Interval   string `yaml:"interval" json:"interval"`
}

// Scraper 抓取 actuarylist 职位列表页。
type Scraper struct {
	baseURL string
	client  *http.Client
	cfg     Config
	now     func() time.Time
	logger  *log.Logger
}

// New 创建抓取器，baseURL 形如 https://www.actuarylist.com。
func New(cfg Config, client *http.Client) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 2
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 60
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.actuarylist.com"
	}
	return &Scraper{
		baseURL: baseURL,
		client:  client,
		cfg:     cfg,
		now:     time.Now,
		logger:  log.New(os.Stdout, "[scraper] ", log.LstdFlags),
	}
}

// Scrape 抓取列表页并解析为待导入记录，按页数与时间窗口限制，
// 同一标题加公司只保留首次出现。
func (s *Scraper) Scrape(ctx context.Context) ([]model.Job, error) {
	cutoff := model.DateOf(s.now().AddDate(0, 0, -s.cfg.MaxAgeDays))

	jobs := make([]model.Job, 0)
	seen := make(map[string]struct{})

	s.logf("start scrape: base=%s max_pages=%d max_age_days=%d", s.baseURL, s.cfg.MaxPages, s.cfg.MaxAgeDays)

	for page := 1; page <= s.cfg.MaxPages; page++ {
		pageURL := s.baseURL
		if page > 1 {
			pageURL = fmt.Sprintf("%s/?page=%d", s.baseURL, page)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http get: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		cards, err := parseJobCards(string(body))
		if err != nil {
			return nil, fmt.Errorf("parse page %d: %w", page, err)
		}
		s.logf("page=%d parsed_cards=%d", page, len(cards))
		if len(cards) == 0 {
			break
		}

		accepted := 0
		for _, card := range cards {
			if card.Title == "" || card.Company == "" {
				continue
			}

			key := card.Title + "|" + card.Company
			if _, exists := seen[key]; exists {
				continue
			}
			seen[key] = struct{}{}

			posted := ParseRelativeDate(card.PostedOn, s.now())
			if posted.Before(cutoff) {
				continue
			}

			location := strings.Join(card.Locations, ", ")
			if location == "" {
				location = "N/A"
			}

			jobs = append(jobs, model.Job{
				Title:       card.Title,
				Company:     card.Company,
				Location:    location,
				Salary:      card.Salary,
				Description: card.Link,
				JobType:     deriveJobType(card.Tags),
				Tags:        card.Tags,
				PostingDate: posted,
			})
			accepted++
		}

		s.logf("page=%d accepted=%d cumulative=%d", page, accepted, len(jobs))
	}

	s.logf("scrape done total_jobs=%d", len(jobs))

	return jobs, nil
}

func (s *Scraper) logf(format string, args ...any) {
	if s.logger == nil {
		s.logger = log.New(os.Stdout, "[scraper] ", log.LstdFlags)
	}
	s.logger.Printf(format, args...)
}

// jobCard 表示列表页上的一张职位卡片。
type jobCard struct {
	Title     string
	Company   string
	Link      string
	Salary    string
	Locations []string
	Tags      []string
	PostedOn  string
}

// 列表页使用带哈希后缀的样式类名，按前缀匹配。
const (
	classCompany  = "Job_job-card__company"
	classPosition = "Job_job-card__position"
	classLink     = "Job_job-page-link"
	classSalary   = "Job_job-card__salary"
	classLocation = "Job_job-card__location"
	classTags     = "Job_job-card__tags"
	classPostedOn = "Job_job-card__posted-on"
)

func parseJobCards(htmlText string) ([]jobCard, error) {
	root, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var cards []jobCard
	for _, article := range findElements(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "article"
	}) {
		card := jobCard{}
		if n := firstWithClassPrefix(article, "p", classCompany); n != nil {
			card.Company = CleanText(textContent(n))
		}
		if n := firstWithClassPrefix(article, "p", classPosition); n != nil {
			card.Title = CleanText(textContent(n))
		}
		if n := firstWithClassPrefix(article, "a", classLink); n != nil {
			card.Link = attr(n, "href")
		}
		if n := firstWithClassPrefix(article, "p", classSalary); n != nil {
			card.Salary = CleanText(textContent(n))
		}
		for _, n := range allWithClassPrefix(article, "a", classLocation) {
			if loc := CleanText(textContent(n)); loc != "" {
				card.Locations = append(card.Locations, loc)
			}
		}
		if tagBox := firstWithClassPrefix(article, "div", classTags); tagBox != nil {
			for _, n := range findElements(tagBox, func(n *html.Node) bool {
				return n.Type == html.ElementNode && n.Data == "a"
			}) {
				if tag := CleanText(textContent(n)); tag != "" {
					card.Tags = append(card.Tags, tag)
				}
			}
		}
		if n := firstWithClassPrefix(article, "p", classPostedOn); n != nil {
			card.PostedOn = strings.TrimSpace(textContent(n))
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// deriveJobType 从标签推断职位类型，默认全职。
func deriveJobType(tags []string) model.JobType {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		switch {
		case strings.Contains(lower, "intern"):
			return model.JobTypeInternship
		case strings.Contains(lower, "part"):
			return model.JobTypePartTime
		case strings.Contains(lower, "contract"), strings.Contains(lower, "temporary"):
			return model.JobTypeContract
		}
	}
	return model.JobTypeFullTime
}

var (
	nonASCII    = regexp.MustCompile(`[^\x00-\x7F]+`)
	extraSpace  = regexp.MustCompile(`\s+`)
	relativeAge = regexp.MustCompile(`(\d+)\s*(mo|h|d|w|m)`)
)

// CleanText 去除非 ASCII 字符与多余空白，N/A 归一为空串。
func CleanText(text string) string {
	text = nonASCII.ReplaceAllString(text, "")
	text = extraSpace.ReplaceAllString(text, " ")
	text = strings.Trim(strings.TrimSpace(text), ",")
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, "N/A") {
		return ""
	}
	return text
}

// ParseRelativeDate 解析 "10h ago"、"12d ago"、"2w ago"、"3mo ago" 这类
// 相对时间，无法解析时退回当天（与原站点展示语义一致，月按 30 天近似）。
func ParseRelativeDate(raw string, now time.Time) model.Date {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "n/a" {
		return model.DateOf(now)
	}

	m := relativeAge.FindStringSubmatch(raw)
	if m == nil {
		return model.DateOf(now)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return model.DateOf(now)
	}

	switch m[2] {
	case "h":
		return model.DateOf(now.Add(-time.Duration(n) * time.Hour))
	case "d":
		return model.DateOf(now.AddDate(0, 0, -n))
	case "w":
		return model.DateOf(now.AddDate(0, 0, -7*n))
	case "mo", "m":
		return model.DateOf(now.AddDate(0, 0, -30*n))
	}
	return model.DateOf(now)
}

func findElements(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func allWithClassPrefix(root *html.Node, tag, prefix string) []*html.Node {
	return findElements(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag && hasClassPrefix(n, prefix)
	})
}

func firstWithClassPrefix(root *html.Node, tag, prefix string) *html.Node {
	nodes := allWithClassPrefix(root, tag, prefix)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func hasClassPrefix(n *html.Node, prefix string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(a.Val) {
			if strings.HasPrefix(class, prefix) {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
