package storage

import (
	"math"

	"optimise-growth-tools/internal/models"
)

// KeywordUpdate carries the fields a ranking refresh overwrites. Identity
// and keyword text are never changed by an update.
type KeywordUpdate struct {
	Position         *int
	PreviousPosition *int
	SearchVolume     int
	Opportunity      string
}

// Store is a keyed record store for projects, keywords, snapshots and
// audits with monotonic id assignment. Absent records read as (nil, nil).
type Store interface {
	GetProject(id int) (*models.Project, error)
	GetProjectByWebsite(website string) (*models.Project, error)
	CreateProject(name, website string) (*models.Project, error)

	GetKeyword(id int) (*models.Keyword, error)
	GetAllKeywords() ([]models.KeywordWithProject, error)
	CreateKeywords(keywords []models.Keyword) ([]models.Keyword, error)
	UpdateKeyword(id int, update KeywordUpdate) (*models.Keyword, error)
	DeleteKeywords(ids []int) error
	ClearAllKeywords() error

	CreateSnapshot(label string, keywordIDs []int, positions map[int]*int) (*models.Snapshot, error)
	GetSnapshots() ([]models.Snapshot, error)

	DashboardMetrics() (models.DashboardMetrics, error)
	RankingDistribution() (models.RankingDistribution, error)
	OpportunityKeywords() ([]models.KeywordWithProject, error)

	CreateAudit(record models.AuditRecord) (*models.AuditRecord, error)
	GetAudit(id int) (*models.AuditRecord, error)

	Close() error
}

// computeMetrics derives the dashboard aggregate from the current keyword
// set. avgPosition is rounded to one decimal over ranked keywords only.
func computeMetrics(keywords []models.KeywordWithProject) models.DashboardMetrics {
	m := models.DashboardMetrics{TotalKeywords: len(keywords)}
	sum, ranked := 0, 0
	for _, k := range keywords {
		if k.Position != nil {
			ranked++
			sum += *k.Position
			if *k.Position <= 10 {
				m.Top10++
			}
		}
		if k.Opportunity == "high" || k.Opportunity == "critical" {
			m.Opportunities++
		}
	}
	if ranked > 0 {
		m.AvgPosition = math.Round(float64(sum)/float64(ranked)*10) / 10
	}
	return m
}

// computeDistribution buckets keywords by position. Buckets are
// cumulative: a position-5 keyword counts toward top10, top20 and top50.
func computeDistribution(keywords []models.KeywordWithProject) models.RankingDistribution {
	var d models.RankingDistribution
	for _, k := range keywords {
		if k.Position == nil {
			d.NotFound++
			continue
		}
		p := *k.Position
		if p <= 10 {
			d.Top10++
		}
		if p <= 20 {
			d.Top20++
		}
		if p <= 50 {
			d.Top50++
		}
	}
	return d
}

// filterOpportunities keeps high/critical keywords, capped at 10.
func filterOpportunities(keywords []models.KeywordWithProject) []models.KeywordWithProject {
	out := make([]models.KeywordWithProject, 0, 10)
	for _, k := range keywords {
		if k.Opportunity == "high" || k.Opportunity == "critical" {
			out = append(out, k)
			if len(out) == 10 {
				break
			}
		}
	}
	return out
}
