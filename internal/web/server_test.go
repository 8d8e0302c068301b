package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"optimise-growth-tools/internal/audit"
	"optimise-growth-tools/internal/fetcher"
	"optimise-growth-tools/internal/models"
	"optimise-growth-tools/internal/serp"
	"optimise-growth-tools/internal/storage"
	"optimise-growth-tools/internal/tracker"
	"optimise-growth-tools/pkg/logger"
)

// rankedSearcher places target.com at a fixed rank per keyword; unknown
// keywords resolve as not-found
type rankedSearcher struct {
	ranks map[string]int
}

func (f *rankedSearcher) Search(ctx context.Context, keyword, location string) ([]serp.Result, error) {
	rank, ok := f.ranks[keyword]
	if !ok {
		return []serp.Result{{Position: 1, Link: "https://unrelated.com"}}, nil
	}
	results := make([]serp.Result, 0, rank)
	for i := 1; i < rank; i++ {
		results = append(results, serp.Result{Position: i, Link: "https://unrelated.com"})
	}
	return append(results, serp.Result{Position: rank, Link: "https://target.com/page"}), nil
}

func newTestServer(t *testing.T, ranks map[string]int, maxKeywords int) (*httptest.Server, *storage.MemStore) {
	t.Helper()
	store := storage.NewMemStore()
	orch := tracker.New(&rankedSearcher{ranks: ranks}, nil, time.Millisecond, time.Millisecond, logger.New())
	client := fetcher.NewClient(5*time.Second, 2*time.Second, 5*1024*1024)
	auditor := audit.New(client, 5*time.Second)
	srv := NewServer(store, auditor, orch, maxKeywords, logger.New())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var fields map[string]json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&fields)
	return resp, fields
}

func message(t *testing.T, fields map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	if raw, ok := fields["message"]; ok {
		_ = json.Unmarshal(raw, &msg)
	}
	return msg
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, nil, 100)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health returned %d", resp.StatusCode)
	}
}

func TestTrackReplacesPreviousGeneration(t *testing.T) {
	ts, store := newTestServer(t, map[string]int{"seo tools": 4, "rank tracker": 15}, 100)

	resp, fields := doJSON(t, http.MethodPost, ts.URL+"/api/keywords/track",
		`{"website":"target.com","keywords":"seo tools\nrank tracker"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("track returned %d: %s", resp.StatusCode, message(t, fields))
	}
	if got := message(t, fields); got != "Successfully tracked 2 keywords" {
		t.Fatalf("unexpected message %q", got)
	}

	// the six seeded sample keywords must be gone
	keywords, err := store.GetAllKeywords()
	if err != nil {
		t.Fatal(err)
	}
	if len(keywords) != 2 {
		t.Fatalf("want exactly the new batch, got %d keywords", len(keywords))
	}
	first := keywords[0]
	if first.Keyword.Keyword != "seo tools" || first.Position == nil || *first.Position != 4 {
		t.Fatalf("unexpected first keyword: %+v", first)
	}
	if first.Location != "us:new-york" {
		t.Fatalf("default location not applied, got %q", first.Location)
	}
	if first.Project.Name != "Project for https://target.com" {
		t.Fatalf("project not auto-created: %q", first.Project.Name)
	}
}

func TestTrackValidation(t *testing.T) {
	ts, _ := newTestServer(t, nil, 100)

	cases := []struct {
		body string
		want string
	}{
		{`{"keywords":"a"}`, "Please enter a website URL"},
		{`{"website":"not a url","keywords":"a"}`, "Please enter a valid website URL (e.g., example.com or www.example.com)"},
		{`{"website":"example.com","keywords":"   "}`, "Please enter at least one keyword"},
	}
	for _, c := range cases {
		resp, fields := doJSON(t, http.MethodPost, ts.URL+"/api/keywords/track", c.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: status %d, want 400", c.body, resp.StatusCode)
		}
		if got := message(t, fields); got != c.want {
			t.Fatalf("body %s: message %q, want %q", c.body, got, c.want)
		}
	}
}

func TestTrackCapsKeywordCount(t *testing.T) {
	ts, store := newTestServer(t, nil, 2)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/keywords/track",
		`{"website":"target.com","keywords":"a\nb\nc\nd"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("track returned %d", resp.StatusCode)
	}
	keywords, _ := store.GetAllKeywords()
	if len(keywords) != 2 {
		t.Fatalf("batch must cap at the configured limit, got %d", len(keywords))
	}
}

func TestListKeywordFilters(t *testing.T) {
	ts, _ := newTestServer(t, nil, 100)

	// sample data: positions 7, 15, 3, 42, nil, 18
	cases := []struct {
		filter string
		want   int
	}{
		{"", 6},
		{"top10", 2},
		{"top20", 4},
		{"top50", 5},
		{"notfound", 1},
	}
	for _, c := range cases {
		resp, err := http.Get(ts.URL + "/api/keywords?filter=" + c.filter)
		if err != nil {
			t.Fatal(err)
		}
		var keywords []models.KeywordWithProject
		if err := json.NewDecoder(resp.Body).Decode(&keywords); err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if len(keywords) != c.want {
			t.Fatalf("filter %q: got %d keywords, want %d", c.filter, len(keywords), c.want)
		}
	}
}

func TestRefreshShiftsPreviousPosition(t *testing.T) {
	ts, store := newTestServer(t, map[string]int{"alpha": 2}, 100)

	if err := store.ClearAllKeywords(); err != nil {
		t.Fatal(err)
	}
	p, _ := store.CreateProject("p", "https://target.com")
	old := 9
	created, err := store.CreateKeywords([]models.Keyword{
		{ProjectID: p.ID, Keyword: "alpha", Position: &old, SearchVolume: 500, Opportunity: "low", Location: "us"},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, fields := doJSON(t, http.MethodPost, ts.URL+"/api/keywords/refresh", "{}")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh returned %d", resp.StatusCode)
	}
	if got := message(t, fields); got != "Successfully refreshed 1 keywords" {
		t.Fatalf("unexpected message %q", got)
	}

	kw, err := store.GetKeyword(created[0].ID)
	if err != nil || kw == nil {
		t.Fatalf("keyword lookup: %+v, %v", kw, err)
	}
	if kw.Position == nil || *kw.Position != 2 {
		t.Fatalf("position not refreshed: %+v", kw.Position)
	}
	if kw.PreviousPosition == nil || *kw.PreviousPosition != 9 {
		t.Fatalf("previous position not shifted: %+v", kw.PreviousPosition)
	}
}

func TestDeleteKeywords(t *testing.T) {
	ts, store := newTestServer(t, nil, 100)

	before, _ := store.GetAllKeywords()
	resp, fields := doJSON(t, http.MethodDelete, ts.URL+"/api/keywords",
		`{"keywordIds":[1,2]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete returned %d: %s", resp.StatusCode, message(t, fields))
	}
	after, _ := store.GetAllKeywords()
	if len(after) != len(before)-2 {
		t.Fatalf("want %d keywords after delete, got %d", len(before)-2, len(after))
	}

	resp, fields = doJSON(t, http.MethodDelete, ts.URL+"/api/keywords", `{"keywordIds":[]}`)
	if resp.StatusCode != http.StatusBadRequest || message(t, fields) != "Valid keyword IDs required" {
		t.Fatalf("empty id list: status %d, message %q", resp.StatusCode, message(t, fields))
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	ts, _ := newTestServer(t, nil, 100)

	// id 9999 does not exist and must be skipped from captured positions
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/snapshots",
		`{"label":"baseline","keywordIds":[1,2,9999]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("snapshot create returned %d", resp.StatusCode)
	}

	listResp, err := http.Get(ts.URL + "/api/snapshots")
	if err != nil {
		t.Fatal(err)
	}
	defer listResp.Body.Close()
	var snaps []models.Snapshot
	if err := json.NewDecoder(listResp.Body).Decode(&snaps); err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 || snaps[0].Label != "baseline" {
		t.Fatalf("unexpected snapshots: %+v", snaps)
	}
	if len(snaps[0].KeywordIDs) != 3 {
		t.Fatalf("requested ids must be recorded verbatim: %+v", snaps[0].KeywordIDs)
	}
	if _, ok := snaps[0].Positions[9999]; ok {
		t.Fatal("missing keyword must not contribute a captured position")
	}
	if snaps[0].Positions[1] == nil || *snaps[0].Positions[1] != 7 {
		t.Fatalf("captured position wrong: %+v", snaps[0].Positions)
	}

	resp, fields := doJSON(t, http.MethodPost, ts.URL+"/api/snapshots", `{"label":"","keywordIds":[1]}`)
	if resp.StatusCode != http.StatusBadRequest || message(t, fields) != "Label and keyword IDs required" {
		t.Fatalf("missing label: status %d, message %q", resp.StatusCode, message(t, fields))
	}
}

func TestExportCSV(t *testing.T) {
	ts, _ := newTestServer(t, nil, 100)

	resp, err := http.Get(ts.URL + "/api/export")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "keyword-rankings.csv") {
		t.Fatalf("content disposition %q", cd)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if got := strings.TrimSpace(lines[0]); got != "Keyword,Position,Search Volume,Opportunity,Location,Website,Last Updated,Snapshot Labels" {
		t.Fatalf("unexpected header row %q", got)
	}
	if len(lines) != 7 {
		t.Fatalf("want header plus 6 sample rows, got %d lines", len(lines))
	}
}

func TestMetricsAndDistributionEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, nil, 100)

	resp, err := http.Get(ts.URL + "/api/metrics")
	if err != nil {
		t.Fatal(err)
	}
	var m models.DashboardMetrics
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if m.TotalKeywords != 6 || m.Top10 != 2 || m.AvgPosition != 17.0 || m.Opportunities != 3 {
		t.Fatalf("unexpected metrics: %+v", m)
	}

	resp, err = http.Get(ts.URL + "/api/ranking-distribution")
	if err != nil {
		t.Fatal(err)
	}
	var d models.RankingDistribution
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if (d != models.RankingDistribution{Top10: 2, Top20: 4, Top50: 5, NotFound: 1}) {
		t.Fatalf("unexpected distribution: %+v", d)
	}

	resp, err = http.Get(ts.URL + "/api/opportunities")
	if err != nil {
		t.Fatal(err)
	}
	var opps []models.KeywordWithProject
	if err := json.NewDecoder(resp.Body).Decode(&opps); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(opps) != 3 {
		t.Fatalf("want the 3 high/critical sample keywords, got %d", len(opps))
	}
}

func TestAuditEndpoint(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!doctype html><html><body>
<nav><a href="/">Home</a><a href="/pricing">Pricing</a></nav>
<h1>Grow your business with better conversion</h1>
<button class="btn-primary">Get Started</button>
<p>` + strings.Repeat("content ", 12) + `</p>
</body></html>`))
	}))
	defer page.Close()

	ts, _ := newTestServer(t, nil, 100)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/audits",
		`{"websiteUrl":"`+page.URL+`","conversionGoal":"signup","businessType":"saas"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit returned %d", resp.StatusCode)
	}

	// decode the full record from a second identical request
	resp2, err := http.Post(ts.URL+"/api/audits", "application/json",
		strings.NewReader(`{"websiteUrl":"`+page.URL+`","conversionGoal":"signup","businessType":"saas"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	var record models.AuditRecord
	if err := json.NewDecoder(resp2.Body).Decode(&record); err != nil {
		t.Fatal(err)
	}
	if record.ID == 0 {
		t.Fatal("audit record id not assigned")
	}
	if record.OverallScore < 1 || record.OverallScore > 10 {
		t.Fatalf("overall score out of range: %d", record.OverallScore)
	}
	if len(record.Findings) != 2 || record.Findings[0].Category != "Headline Quality" {
		t.Fatalf("headline finding must come first: %+v", record.Findings)
	}
	if record.Findings[1].Category != "Call-to-Action" || record.Findings[1].Status != "good" {
		t.Fatalf("unexpected cta finding: %+v", record.Findings[1])
	}
	if record.ExtractedContent.Headline != "Grow your business with better conversion" {
		t.Fatalf("preview headline %q", record.ExtractedContent.Headline)
	}

	getResp, err := http.Get(ts.URL + "/api/audits/" + strconv.Itoa(record.ID))
	if err != nil {
		t.Fatal(err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("audit fetch returned %d", getResp.StatusCode)
	}

	missing, err := http.Get(ts.URL + "/api/audits/99999")
	if err != nil {
		t.Fatal(err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing audit returned %d, want 404", missing.StatusCode)
	}
}

func TestAuditValidation(t *testing.T) {
	ts, _ := newTestServer(t, nil, 100)

	cases := []struct {
		body string
		want string
	}{
		{`{"conversionGoal":"x","businessType":"y"}`, "Please enter a website URL"},
		{`{"websiteUrl":"https://foo.com","businessType":"y"}`, "Please specify your conversion goal"},
		{`{"websiteUrl":"https://foo.com","conversionGoal":"x"}`, "Please select your business type"},
	}
	for _, c := range cases {
		resp, fields := doJSON(t, http.MethodPost, ts.URL+"/api/audits", c.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: status %d, want 400", c.body, resp.StatusCode)
		}
		if got := message(t, fields); got != c.want {
			t.Fatalf("body %s: message %q, want %q", c.body, got, c.want)
		}
	}
}

func TestAuditUnreachableSiteReturns400(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer dead.Close()

	ts, _ := newTestServer(t, nil, 100)
	resp, fields := doJSON(t, http.MethodPost, ts.URL+"/api/audits",
		`{"websiteUrl":"`+dead.URL+`","conversionGoal":"x","businessType":"y"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unreachable site returned %d, want 400", resp.StatusCode)
	}
	if got := message(t, fields); !strings.Contains(got, "failed to analyze website") {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestSitemapAndRobots(t *testing.T) {
	ts, _ := newTestServer(t, nil, 100)

	resp, err := http.Get(ts.URL + "/sitemap.xml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/xml" {
		t.Fatalf("sitemap: status %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp, err = http.Get(ts.URL + "/robots.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "text/plain" {
		t.Fatalf("robots: status %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}
