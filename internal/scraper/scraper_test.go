package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"job-board/internal/model"
)

func TestScrapeParsesCards(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	page1 := buildListingHTML([]cardFixture{
		{
			Company:  "AXA",
			Title:    "Pricing Actuary",
			Link:     "/actuarial-jobs/12345",
			Salary:   "$120k - $150k",
			Location: []string{"London", "Remote"},
			Tags:     []string{"Pricing", "Life"},
			PostedOn: "10h ago",
		},
		{
			Company:  "Swiss Re",
			Title:    "Actuarial Intern \U0001F680",
			Link:     "/actuarial-jobs/67890",
			Location: []string{"Zurich"},
			Tags:     []string{"Internship"},
			PostedOn: "3d ago",
		},
		{
			Company:  "Old Corp",
			Title:    "Stale Role",
			Location: []string{"Paris"},
			PostedOn: "6mo ago",
		},
	})

	hits := &atomic.Int32{}
	rt := stubRoundTripper{pages: map[string]string{
		"https://board.test":         page1,
		"https://board.test/?page=2": buildListingHTML(nil),
	}, hits: hits}

	s := New(Config{BaseURL: "https://board.test", MaxPages: 3, MaxAgeDays: 60}, &http.Client{Transport: rt})
	s.now = func() time.Time { return now }

	jobs, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}

	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs (stale one dropped), got %d", len(jobs))
	}

	first := jobs[0]
	if first.Company != "AXA" || first.Title != "Pricing Actuary" {
		t.Fatalf("unexpected first job %+v", first)
	}
	if first.Location != "London, Remote" {
		t.Fatalf("locations not joined: %q", first.Location)
	}
	if first.JobType != model.JobTypeFullTime {
		t.Fatalf("expected Full-time, got %s", first.JobType)
	}
	if !first.PostingDate.Equal(model.NewDate(2024, 6, 10)) {
		t.Fatalf("unexpected posting date %s", first.PostingDate)
	}

	second := jobs[1]
	if second.Title != "Actuarial Intern" {
		t.Fatalf("emoji not stripped from title: %q", second.Title)
	}
	if second.JobType != model.JobTypeInternship {
		t.Fatalf("expected Internship derived from tags, got %s", second.JobType)
	}
	if !second.PostingDate.Equal(model.NewDate(2024, 6, 7)) {
		t.Fatalf("unexpected posting date %s", second.PostingDate)
	}
}

func TestScrapeDeduplicatesByTitleAndCompany(t *testing.T) {
	t.Parallel()

	card := cardFixture{
		Company:  "AXA",
		Title:    "Pricing Actuary",
		Location: []string{"London"},
		PostedOn: "1d ago",
	}
	rt := stubRoundTripper{pages: map[string]string{
		"https://board.test":         buildListingHTML([]cardFixture{card, card}),
		"https://board.test/?page=2": buildListingHTML([]cardFixture{card}),
	}, hits: &atomic.Int32{}}

	s := New(Config{BaseURL: "https://board.test", MaxPages: 2, MaxAgeDays: 30}, &http.Client{Transport: rt})
	s.now = func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }

	jobs, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 unique job, got %d", len(jobs))
	}
}

func TestScrapeStopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	hits := &atomic.Int32{}
	rt := stubRoundTripper{pages: map[string]string{
		"https://board.test": buildListingHTML(nil),
	}, hits: hits}

	s := New(Config{BaseURL: "https://board.test", MaxPages: 5, MaxAgeDays: 30}, &http.Client{Transport: rt})

	jobs, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
	if hits.Load() != 1 {
		t.Fatalf("expected scraping to stop after the empty page, got %d requests", hits.Load())
	}
}

func TestParseRelativeDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		raw  string
		want model.Date
	}{
		{"10h ago", model.NewDate(2024, 6, 10)},
		{"30h ago", model.NewDate(2024, 6, 9)},
		{"12d ago", model.NewDate(2024, 5, 29)},
		{"2w ago", model.NewDate(2024, 5, 27)},
		{"1mo ago", model.NewDate(2024, 5, 11)},
		{"N/A", model.NewDate(2024, 6, 10)},
		{"", model.NewDate(2024, 6, 10)},
		{"yesterday", model.NewDate(2024, 6, 10)},
	}
	for _, tc := range cases {
		if got := ParseRelativeDate(tc.raw, now); !got.Equal(tc.want) {
			t.Errorf("ParseRelativeDate(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"  Pricing   Actuary ", "Pricing Actuary"},
		{"London \U0001F1EC\U0001F1E7", "London"},
		{"N/A", ""},
		{"Life, ", "Life"},
	}
	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Errorf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// --- fixtures ---

type cardFixture struct {
	Company  string
	Title    string
	Link     string
	Salary   string
	Location []string
	Tags     []string
	PostedOn string
}

func buildListingHTML(cards []cardFixture) string {
	var sb strings.Builder
	sb.WriteString("<html><body><main>")
	for _, c := range cards {
		sb.WriteString("<article>")
		fmt.Fprintf(&sb, `<p class="Job_job-card__company__7T9qY">%s</p>`, c.Company)
		fmt.Fprintf(&sb, `<p class="Job_job-card__position__ic1rc">%s</p>`, c.Title)
		if c.Link != "" {
			fmt.Fprintf(&sb, `<a class="Job_job-page-link__a5I5g" href="%s">View</a>`, c.Link)
		}
		if c.Salary != "" {
			fmt.Fprintf(&sb, `<p class="Job_job-card__salary__QZswp">%s</p>`, c.Salary)
		}
		for _, loc := range c.Location {
			fmt.Fprintf(&sb, `<a class="Job_job-card__location__bq7jX">%s</a>`, loc)
		}
		if len(c.Tags) > 0 {
			sb.WriteString(`<div class="Job_job-card__tags__zfriA">`)
			for _, tag := range c.Tags {
				fmt.Fprintf(&sb, `<a>%s</a>`, tag)
			}
			sb.WriteString("</div>")
		}
		if c.PostedOn != "" {
			fmt.Fprintf(&sb, `<p class="Job_job-card__posted-on__NCZaJ">%s</p>`, c.PostedOn)
		}
		sb.WriteString("</article>")
	}
	sb.WriteString("</main></body></html>")
	return sb.String()
}

type stubRoundTripper struct {
	pages map[string]string
	hits  *atomic.Int32
}

func (rt stubRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.hits.Add(1)
	body, ok := rt.pages[req.URL.String()]
	if !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("not found")),
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}
