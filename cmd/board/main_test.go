package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"job-board/internal/client"
	"job-board/internal/model"
	"job-board/internal/store"
)

func TestRunListRendersProjection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]model.Job{
			{ID: 1, Title: "Actuary", Company: "AXA", Location: "London", JobType: model.JobTypeFullTime, PostingDate: model.NewDate(2024, 1, 10), Tags: []string{"Life"}},
			{ID: 2, Title: "Data Analyst", Company: "Munich Re", Location: "Remote", JobType: model.JobTypeContract, PostingDate: model.NewDate(2024, 2, 1), Tags: []string{"Health"}},
		})
	}))
	t.Cleanup(srv.Close)

	st := store.NewStore()
	c := client.New(srv.URL, st, srv.Client())

	var out bytes.Buffer
	filter := model.DefaultFilter()
	filter.Location = "London"

	err := run(context.Background(), c, "list", 0, filter, client.Draft{}, &out, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "Showing 1 of 2 jobs") {
		t.Fatalf("unexpected header in output:\n%s", text)
	}
	if !strings.Contains(text, "Actuary") || strings.Contains(text, "Data Analyst") {
		t.Fatalf("projection not applied:\n%s", text)
	}
	// Facets come from the full collection, not the filtered subset.
	if !strings.Contains(text, "London, Remote") {
		t.Fatalf("expected both locations in facets:\n%s", text)
	}
}

func TestRunUnknownOperation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)

	c := client.New(srv.URL, store.NewStore(), srv.Client())
	err := run(context.Background(), c, "explode", 0, model.DefaultFilter(), client.Draft{}, io.Discard, log.New(io.Discard, "", 0))
	if err == nil {
		t.Fatal("expected error for unknown operation")
	}
}

func TestSplitTags(t *testing.T) {
	t.Parallel()

	got := splitTags(" Life , ,Health ")
	if len(got) != 2 || got[0] != "Life" || got[1] != "Health" {
		t.Fatalf("unexpected tags %v", got)
	}
	if splitTags("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}
