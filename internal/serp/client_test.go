package serp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchSendsLocationAndReturnsOrganic(t *testing.T) {
	var got searchRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing api key header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(searchResponse{Organic: []Result{
			{Position: 1, Link: "https://example.com"},
		}})
	}))
	defer ts.Close()

	c := NewClient("test-key", ts.URL)
	results, err := c.Search(context.Background(), "seo tools", "us:new-york")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(results) != 1 || results[0].Link != "https://example.com" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if got.Q != "seo tools" || got.Num != 100 || got.HL != "en" {
		t.Fatalf("unexpected request payload: %+v", got)
	}
	if got.GL != "us" || got.Loc != "New York, NY, United States" {
		t.Fatalf("city targeting not applied: gl=%q loc=%q", got.GL, got.Loc)
	}
}

func TestSearchCountryOnlyLocation(t *testing.T) {
	gl, loc := parseLocation("de")
	if gl != "de" || loc != "" {
		t.Fatalf("want bare country targeting, got gl=%q loc=%q", gl, loc)
	}
	gl, loc = parseLocation("us:springfield")
	if gl != "us" || loc != "springfield, us" {
		t.Fatalf("unknown city should pass through, got gl=%q loc=%q", gl, loc)
	}
}

func TestSearchUnconfiguredReturnsEmpty(t *testing.T) {
	c := NewClient("", "")
	results, err := c.Search(context.Background(), "anything", "us")
	if err != nil || results != nil {
		t.Fatalf("unconfigured client must return empty, got %v, %v", results, err)
	}
}

func TestSearchAPIErrorSurfaces(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient("key", ts.URL)
	if _, err := c.Search(context.Background(), "kw", "us"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
