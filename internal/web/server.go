package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"optimise-growth-tools/internal/audit"
	"optimise-growth-tools/internal/export"
	"optimise-growth-tools/internal/models"
	"optimise-growth-tools/internal/storage"
	"optimise-growth-tools/internal/tracker"
	"optimise-growth-tools/internal/urlutil"
	"optimise-growth-tools/pkg/logger"
)

var websiteRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}(?:/.*)?$`)

// Server holds the HTTP surface. Tracking requests are serialized so the
// clear-then-create batch cannot interleave with another batch.
type Server struct {
	store       storage.Store
	auditor     *audit.Auditor
	tracker     *tracker.Orchestrator
	log         *logger.Logger
	maxKeywords int

	trackMu sync.Mutex
}

func NewServer(store storage.Store, auditor *audit.Auditor, orch *tracker.Orchestrator, maxKeywords int, log *logger.Logger) *Server {
	return &Server{
		store:       store,
		auditor:     auditor,
		tracker:     orch,
		log:         log,
		maxKeywords: maxKeywords,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/keywords", s.handleListKeywords)
	mux.HandleFunc("POST /api/keywords/track", s.handleTrackKeywords)
	mux.HandleFunc("POST /api/keywords/refresh", s.handleRefreshKeywords)
	mux.HandleFunc("DELETE /api/keywords", s.handleDeleteKeywords)
	mux.HandleFunc("POST /api/snapshots", s.handleCreateSnapshot)
	mux.HandleFunc("GET /api/snapshots", s.handleListSnapshots)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/ranking-distribution", s.handleRankingDistribution)
	mux.HandleFunc("GET /api/opportunities", s.handleOpportunities)
	mux.HandleFunc("POST /api/audits", s.handleCreateAudit)
	mux.HandleFunc("GET /api/audits/{id}", s.handleGetAudit)
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /robots.txt", s.handleRobots)

	return logRequest(s.log, mux)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.store.DashboardMetrics()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get metrics")
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.store.GetAllKeywords()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get keywords")
		return
	}
	keywords = filterKeywords(keywords, r.URL.Query().Get("filter"))
	writeJSON(w, http.StatusOK, keywords)
}

func filterKeywords(keywords []models.KeywordWithProject, filter string) []models.KeywordWithProject {
	if filter == "" {
		return keywords
	}
	out := make([]models.KeywordWithProject, 0, len(keywords))
	for _, k := range keywords {
		switch filter {
		case "top10":
			if k.Position != nil && *k.Position <= 10 {
				out = append(out, k)
			}
		case "top20":
			if k.Position != nil && *k.Position <= 20 {
				out = append(out, k)
			}
		case "top50":
			if k.Position != nil && *k.Position <= 50 {
				out = append(out, k)
			}
		case "notfound":
			if k.Position == nil {
				out = append(out, k)
			}
		default:
			out = append(out, k)
		}
	}
	return out
}

type trackRequest struct {
	Website  string `json:"website"`
	Keywords string `json:"keywords"`
	Location string `json:"location"`
}

func (s *Server) handleTrackKeywords(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Website == "" {
		writeError(w, http.StatusBadRequest, "Please enter a website URL")
		return
	}
	if !websiteRe.MatchString(req.Website) {
		writeError(w, http.StatusBadRequest, "Please enter a valid website URL (e.g., example.com or www.example.com)")
		return
	}
	if strings.TrimSpace(req.Keywords) == "" {
		writeError(w, http.StatusBadRequest, "Please enter at least one keyword")
		return
	}
	if req.Location == "" {
		req.Location = "us:new-york"
	}

	keywordList := splitKeywords(req.Keywords, s.maxKeywords)
	if len(keywordList) == 0 {
		writeError(w, http.StatusBadRequest, "Please enter at least one keyword")
		return
	}
	website := urlutil.NormalizeURL(req.Website)

	s.trackMu.Lock()
	defer s.trackMu.Unlock()

	project, err := s.store.GetProjectByWebsite(website)
	if err == nil && project == nil {
		project, err = s.store.CreateProject("Project for "+website, website)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to track keywords")
		return
	}

	s.log.Infof("tracking %d keywords for %s", len(keywordList), website)

	// fresh start: the previous keyword generation is replaced, not merged
	if err := s.store.ClearAllKeywords(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to track keywords")
		return
	}

	results := s.tracker.TrackBatch(r.Context(), keywordList, website, req.Location)

	toCreate := make([]models.Keyword, 0, len(results))
	for _, res := range results {
		toCreate = append(toCreate, models.Keyword{
			ProjectID:    project.ID,
			Keyword:      res.Keyword,
			Position:     res.Position,
			SearchVolume: res.SearchVolume,
			Opportunity:  res.Opportunity,
			Location:     req.Location,
		})
	}
	created, err := s.store.CreateKeywords(toCreate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to track keywords")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("Successfully tracked %d keywords", len(created)),
		"keywords": created,
	})
}

func splitKeywords(raw string, limit int) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		kw := strings.TrimSpace(line)
		if kw == "" {
			continue
		}
		out = append(out, kw)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (s *Server) handleRefreshKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.store.GetAllKeywords()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh rankings")
		return
	}
	s.log.Infof("refreshing rankings for %d keywords", len(keywords))

	results := s.tracker.Refresh(r.Context(), keywords)

	refreshed := 0
	for i, kw := range keywords {
		res := results[i]
		_, err := s.store.UpdateKeyword(kw.ID, storage.KeywordUpdate{
			PreviousPosition: kw.Position,
			Position:         res.Position,
			SearchVolume:     res.SearchVolume,
			Opportunity:      res.Opportunity,
		})
		if err != nil {
			s.log.Errorf("refresh update failed for %q: %v", kw.Keyword.Keyword, err)
			continue
		}
		refreshed++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        fmt.Sprintf("Successfully refreshed %d keywords", refreshed),
		"refreshedCount": refreshed,
		"totalKeywords":  len(keywords),
	})
}

type deleteRequest struct {
	KeywordIDs []int `json:"keywordIds"`
}

func (s *Server) handleDeleteKeywords(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.KeywordIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Valid keyword IDs required")
		return
	}
	if err := s.store.DeleteKeywords(req.KeywordIDs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete keywords")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type snapshotRequest struct {
	Label      string `json:"label"`
	KeywordIDs []int  `json:"keywordIds"`
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Label == "" || len(req.KeywordIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Label and keyword IDs required")
		return
	}

	// capture current positions; ids that no longer resolve are skipped
	positions := make(map[int]*int, len(req.KeywordIDs))
	for _, id := range req.KeywordIDs {
		kw, err := s.store.GetKeyword(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create snapshot")
			return
		}
		if kw != nil {
			positions[id] = kw.Position
		}
	}

	snap, err := s.store.CreateSnapshot(req.Label, req.KeywordIDs, positions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.store.GetSnapshots()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get snapshots")
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.store.GetAllKeywords()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}
	snapshots, err := s.store.GetSnapshots()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="keyword-rankings.csv"`)
	if err := export.WriteKeywordCSV(w, keywords, snapshots); err != nil {
		s.log.Errorf("csv export: %v", err)
	}
}

func (s *Server) handleRankingDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := s.store.RankingDistribution()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get ranking distribution")
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	opps, err := s.store.OpportunityKeywords()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get opportunities")
		return
	}
	writeJSON(w, http.StatusOK, opps)
}

type auditRequest struct {
	WebsiteURL     string `json:"websiteUrl"`
	ConversionGoal string `json:"conversionGoal"`
	BusinessType   string `json:"businessType"`
}

func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	switch {
	case req.WebsiteURL == "":
		writeError(w, http.StatusBadRequest, "Please enter a website URL")
		return
	case req.ConversionGoal == "":
		writeError(w, http.StatusBadRequest, "Please specify your conversion goal")
		return
	case req.BusinessType == "":
		writeError(w, http.StatusBadRequest, "Please select your business type")
		return
	}

	normalized := urlutil.NormalizeURL(req.WebsiteURL)
	if u, err := url.Parse(normalized); err != nil || u.Host == "" {
		writeError(w, http.StatusBadRequest, "Please enter a valid website URL (e.g., example.com or https://example.com)")
		return
	}

	result, err := s.auditor.Run(r.Context(), audit.Request{
		WebsiteURL:     normalized,
		ConversionGoal: req.ConversionGoal,
		BusinessType:   req.BusinessType,
	})
	if err != nil {
		s.log.Errorf("audit error: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := s.store.CreateAudit(models.AuditRecord{
		WebsiteURL:       normalized,
		ConversionGoal:   req.ConversionGoal,
		BusinessType:     req.BusinessType,
		OverallScore:     result.Scores.Overall,
		AboveFoldScore:   result.Scores.AboveFold,
		CTAScore:         result.Scores.CTA,
		NavigationScore:  result.Scores.Navigation,
		ContentScore:     result.Scores.Content,
		Findings:         result.Findings,
		Recommendations:  result.Recommendations,
		ExtractedContent: result.ExtractedContent,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to perform audit")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid audit id")
		return
	}
	record, err := s.store.GetAudit(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve audit")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "Audit not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(sitemapXML))
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(robotsTxt))
}

const sitemapXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://www.optimisedigital.online/ai-growth-tools/</loc>
    <changefreq>monthly</changefreq>
    <priority>1.0</priority>
  </url>
  <url>
    <loc>https://www.optimisedigital.online/ai-growth-tools/free-simple-keyword-tracker</loc>
    <changefreq>weekly</changefreq>
    <priority>0.9</priority>
  </url>
  <url>
    <loc>https://www.optimisedigital.online/ai-growth-tools/website-conversion-rate-audit</loc>
    <changefreq>weekly</changefreq>
    <priority>0.9</priority>
  </url>
</urlset>`

const robotsTxt = `User-agent: *
Allow: /

Sitemap: https://www.optimisedigital.online/ai-growth-tools/sitemap.xml`

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"message": message})
}

func logRequest(l *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		l.Infof("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
