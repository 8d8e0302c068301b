package models

import "time"

// Project groups tracked keywords under one website.
type Project struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"createdAt"`
}

// Keyword is one tracked search term. Position is nil when the target
// domain was not found in the top 100 results.
type Keyword struct {
	ID               int       `json:"id"`
	ProjectID        int       `json:"projectId"`
	Keyword          string    `json:"keyword"`
	Position         *int      `json:"position"`
	PreviousPosition *int      `json:"previousPosition"`
	SearchVolume     int       `json:"searchVolume"`
	Opportunity      string    `json:"opportunity"` // low, medium, high, critical
	Location         string    `json:"location"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

type KeywordWithProject struct {
	Keyword
	Project Project `json:"project"`
}

// Snapshot captures keyword positions at a point in time. It references
// keywords by id; the captured positions survive keyword deletion.
type Snapshot struct {
	ID         int          `json:"id"`
	Label      string       `json:"label"`
	KeywordIDs []int        `json:"keywordIds"`
	Positions  map[int]*int `json:"positions"`
	CreatedAt  time.Time    `json:"createdAt"`
}

type DashboardMetrics struct {
	TotalKeywords int     `json:"totalKeywords"`
	Top10         int     `json:"top10"`
	AvgPosition   float64 `json:"avgPosition"`
	Opportunities int     `json:"opportunities"`
}

type RankingDistribution struct {
	Top10    int `json:"top10"`
	Top20    int `json:"top20"`
	Top50    int `json:"top50"`
	NotFound int `json:"notFound"`
}

// CTACandidate is one interactive element considered as a call-to-action.
type CTACandidate struct {
	Text      string `json:"text"`
	IsPrimary bool   `json:"isPrimary"`
	Classes   string `json:"classes"`
	Href      string `json:"href"`
}

// ContentPreview is the trimmed extract persisted with an audit record.
type ContentPreview struct {
	Headline        string   `json:"headline"`
	SubHeadlines    []string `json:"subHeadlines"`
	NavigationItems []string `json:"navigationItems"`
	CTATexts        []string `json:"ctaTexts"`
}

// ExtractedSignals is everything the scoring engine needs from a page.
// Built once per audit request and never mutated after extraction.
type ExtractedSignals struct {
	MainHeadline      string
	Headlines         []string
	TrustSignal       bool
	HierarchyComplete bool
	CTACandidates     []CTACandidate
	PrimaryCTA        *CTACandidate
	HasNavigation     bool
	NavigationItems   []string
	HeadingCount      int
	ParagraphCount    int
	AvgParagraphLen   float64
	Preview           ContentPreview
}

type Finding struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
	Status   string `json:"status"` // good, warning, critical
	Message  string `json:"message"`
}

type Recommendation struct {
	Priority      int    `json:"priority"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Impact        string `json:"impact"`
	EstimatedLift string `json:"estimatedLift"`
}

// ScoreSet holds the four sub-scores and the overall score derived from
// them. Overall is always recomputed from the sub-scores, never set
// independently.
type ScoreSet struct {
	AboveFold  int `json:"aboveFoldScore"`
	CTA        int `json:"ctaScore"`
	Navigation int `json:"navigationScore"`
	Content    int `json:"contentScore"`
	Overall    int `json:"overallScore"`
}

// AuditRecord is the persisted result of one audit run. Immutable after
// creation; read back by id only.
type AuditRecord struct {
	ID               int              `json:"id"`
	WebsiteURL       string           `json:"websiteUrl"`
	ConversionGoal   string           `json:"conversionGoal"`
	BusinessType     string           `json:"businessType"`
	OverallScore     int              `json:"overallScore"`
	AboveFoldScore   int              `json:"aboveFoldScore"`
	CTAScore         int              `json:"ctaScore"`
	NavigationScore  int              `json:"navigationScore"`
	ContentScore     int              `json:"contentScore"`
	Findings         []Finding        `json:"findings"`
	Recommendations  []Recommendation `json:"recommendations"`
	ExtractedContent ContentPreview   `json:"extractedContent"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// KeywordResult is one orchestrator outcome before persistence.
type KeywordResult struct {
	Keyword      string `json:"keyword"`
	Position     *int   `json:"position"`
	SearchVolume int    `json:"searchVolume"`
	Opportunity  string `json:"opportunity"`
}
