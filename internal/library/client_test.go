package library

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "calculus" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"docs":[
			{"key":"/works/OL1W","title":"Calculus","author_name":["Spivak","Someone Else"],"first_publish_year":1967},
			{"key":"/works/OL2W","title":"Calculus Made Easy"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	books, err := c.Search(context.Background(), "calculus", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("len = %d, want 2", len(books))
	}
	if books[0].Title != "Calculus" || books[0].Author != "Spivak" || books[0].FirstYear != 1967 {
		t.Errorf("book = %+v", books[0])
	}
	if books[1].Author != "" || books[1].FirstYear != 0 {
		t.Errorf("missing fields should stay zero: %+v", books[1])
	}
}

func TestSearchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Search(context.Background(), "x", 0); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestSearchContextCancel(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL, 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Search(ctx, "x", 1); err == nil {
		t.Error("expected context error")
	}
}
