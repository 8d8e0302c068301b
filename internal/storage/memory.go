package storage

import (
	"sort"
	"sync"
	"time"

	"optimise-growth-tools/internal/models"
)

// MemStore is the in-process backend. A mutex guards all state so
// overlapping requests cannot observe a half-applied batch.
type MemStore struct {
	mu        sync.Mutex
	projects  map[int]models.Project
	keywords  map[int]models.Keyword
	snapshots map[int]models.Snapshot
	audits    map[int]models.AuditRecord

	nextProjectID  int
	nextKeywordID  int
	nextSnapshotID int
	nextAuditID    int
}

func NewMemStore() *MemStore {
	s := &MemStore{
		projects:       map[int]models.Project{},
		keywords:       map[int]models.Keyword{},
		snapshots:      map[int]models.Snapshot{},
		audits:         map[int]models.AuditRecord{},
		nextProjectID:  1,
		nextKeywordID:  1,
		nextSnapshotID: 1,
		nextAuditID:    1,
	}
	s.seedSampleData()
	return s
}

func intp(v int) *int { return &v }

// seedSampleData loads one representative project so dashboards render
// before the first tracking request.
func (s *MemStore) seedSampleData() {
	now := time.Now()
	project := models.Project{ID: s.nextProjectID, Name: "Sample SEO Project", Website: "https://example.com", CreatedAt: now}
	s.nextProjectID++
	s.projects[project.ID] = project

	samples := []models.Keyword{
		{Keyword: "seo tools", Position: intp(7), PreviousPosition: intp(10), SearchVolume: 12100, Opportunity: "medium", Location: "us:new-york"},
		{Keyword: "keyword tracking", Position: intp(15), PreviousPosition: intp(13), SearchVolume: 3200, Opportunity: "high", Location: "us:los-angeles"},
		{Keyword: "google rankings", Position: intp(3), PreviousPosition: intp(3), SearchVolume: 8100, Opportunity: "low", Location: "uk:london"},
		{Keyword: "serp analysis", Position: intp(42), PreviousPosition: intp(50), SearchVolume: 1900, Opportunity: "high", Location: "au:sydney"},
		{Keyword: "rank tracking software", Position: nil, PreviousPosition: nil, SearchVolume: 2400, Opportunity: "critical", Location: "ca:toronto"},
		{Keyword: "search engine optimization", Position: intp(18), PreviousPosition: intp(19), SearchVolume: 27100, Opportunity: "medium", Location: "jp:tokyo"},
	}
	for _, kw := range samples {
		kw.ID = s.nextKeywordID
		s.nextKeywordID++
		kw.ProjectID = project.ID
		kw.LastUpdated = now
		s.keywords[kw.ID] = kw
	}
}

func (s *MemStore) GetProject(id int) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *MemStore) GetProjectByWebsite(website string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.Website == website {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (s *MemStore) CreateProject(name, website string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.Project{
		ID:        s.nextProjectID,
		Name:      name,
		Website:   website,
		CreatedAt: time.Now(),
	}
	s.nextProjectID++
	s.projects[p.ID] = p
	return &p, nil
}

func (s *MemStore) GetKeyword(id int) (*models.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keywords[id]; ok {
		return &k, nil
	}
	return nil, nil
}

func (s *MemStore) GetAllKeywords() ([]models.KeywordWithProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allKeywordsLocked(), nil
}

func (s *MemStore) allKeywordsLocked() []models.KeywordWithProject {
	ids := make([]int, 0, len(s.keywords))
	for id := range s.keywords {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]models.KeywordWithProject, 0, len(ids))
	for _, id := range ids {
		kw := s.keywords[id]
		project, ok := s.projects[kw.ProjectID]
		if !ok {
			continue
		}
		out = append(out, models.KeywordWithProject{Keyword: kw, Project: project})
	}
	return out
}

func (s *MemStore) CreateKeywords(keywords []models.Keyword) ([]models.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := make([]models.Keyword, 0, len(keywords))
	for _, kw := range keywords {
		kw.ID = s.nextKeywordID
		s.nextKeywordID++
		kw.LastUpdated = time.Now()
		s.keywords[kw.ID] = kw
		created = append(created, kw)
	}
	return created, nil
}

func (s *MemStore) UpdateKeyword(id int, update KeywordUpdate) (*models.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kw, ok := s.keywords[id]
	if !ok {
		return nil, nil
	}
	kw.Position = update.Position
	kw.PreviousPosition = update.PreviousPosition
	kw.SearchVolume = update.SearchVolume
	kw.Opportunity = update.Opportunity
	kw.LastUpdated = time.Now()
	s.keywords[id] = kw
	return &kw, nil
}

func (s *MemStore) DeleteKeywords(ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.keywords, id)
	}
	return nil
}

func (s *MemStore) ClearAllKeywords() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywords = map[int]models.Keyword{}
	return nil
}

func (s *MemStore) CreateSnapshot(label string, keywordIDs []int, positions map[int]*int) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := models.Snapshot{
		ID:         s.nextSnapshotID,
		Label:      label,
		KeywordIDs: append([]int(nil), keywordIDs...),
		Positions:  positions,
		CreatedAt:  time.Now(),
	}
	s.nextSnapshotID++
	s.snapshots[snap.ID] = snap
	return &snap, nil
}

func (s *MemStore) GetSnapshots() ([]models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) DashboardMetrics() (models.DashboardMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeMetrics(s.allKeywordsLocked()), nil
}

func (s *MemStore) RankingDistribution() (models.RankingDistribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeDistribution(s.allKeywordsLocked()), nil
}

func (s *MemStore) OpportunityKeywords() ([]models.KeywordWithProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterOpportunities(s.allKeywordsLocked()), nil
}

func (s *MemStore) CreateAudit(record models.AuditRecord) (*models.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = s.nextAuditID
	s.nextAuditID++
	record.CreatedAt = time.Now()
	s.audits[record.ID] = record
	return &record, nil
}

func (s *MemStore) GetAudit(id int) (*models.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.audits[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (s *MemStore) Close() error { return nil }
