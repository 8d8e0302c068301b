package tracker

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"optimise-growth-tools/internal/models"
	"optimise-growth-tools/internal/serp"
	"optimise-growth-tools/pkg/logger"
)

// Searcher returns rank-ordered organic results for a keyword.
type Searcher interface {
	Search(ctx context.Context, keyword, location string) ([]serp.Result, error)
}

// VolumeProvider batch-fetches average monthly search volumes keyed by
// lower-cased keyword.
type VolumeProvider interface {
	SearchVolumes(ctx context.Context, keywords []string) (map[string]int, error)
	Configured() bool
}

// Orchestrator sequences per-keyword SERP lookups with an inter-request
// delay. Lookups run strictly sequentially; one failed lookup degrades to
// not-found rather than failing the batch.
type Orchestrator struct {
	searcher       Searcher
	volumes        VolumeProvider
	trackLimiter   *rate.Limiter
	refreshLimiter *rate.Limiter
	log            *logger.Logger
}

func New(s Searcher, v VolumeProvider, trackDelay, refreshDelay time.Duration, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		searcher:       s,
		volumes:        v,
		trackLimiter:   rate.NewLimiter(rate.Every(trackDelay), 1),
		refreshLimiter: rate.NewLimiter(rate.Every(refreshDelay), 1),
		log:            log,
	}
}

// TrackBatch resolves position, volume and opportunity for each keyword
// against the target website. Duplicates are processed independently.
func (o *Orchestrator) TrackBatch(ctx context.Context, keywords []string, website, location string) []models.KeywordResult {
	volumes := o.fetchVolumes(ctx, keywords)

	results := make([]models.KeywordResult, 0, len(keywords))
	for _, kw := range keywords {
		position := o.lookupPosition(ctx, kw, website, location, o.trackLimiter)
		volume, ok := volumes[strings.ToLower(kw)]
		if !ok {
			volume = serp.EstimateSearchVolume(kw)
		}
		results = append(results, models.KeywordResult{
			Keyword:      kw,
			Position:     position,
			SearchVolume: volume,
			Opportunity:  serp.ClassifyOpportunity(position, volume),
		})
	}
	return results
}

// Refresh re-resolves every keyword at the slower refresh pace, returning
// fresh results in the same order as the input.
func (o *Orchestrator) Refresh(ctx context.Context, keywords []models.KeywordWithProject) []models.KeywordResult {
	texts := make([]string, len(keywords))
	for i, kw := range keywords {
		texts[i] = kw.Keyword.Keyword
	}
	volumes := o.fetchVolumes(ctx, texts)

	results := make([]models.KeywordResult, 0, len(keywords))
	for _, kw := range keywords {
		position := o.lookupPosition(ctx, kw.Keyword.Keyword, kw.Project.Website, kw.Location, o.refreshLimiter)
		volume, ok := volumes[strings.ToLower(kw.Keyword.Keyword)]
		if !ok {
			volume = serp.EstimateSearchVolume(kw.Keyword.Keyword)
		}
		results = append(results, models.KeywordResult{
			Keyword:      kw.Keyword.Keyword,
			Position:     position,
			SearchVolume: volume,
			Opportunity:  serp.ClassifyOpportunity(position, volume),
		})
	}
	return results
}

// fetchVolumes attempts one batched metrics call. A total failure leaves
// the map empty so every keyword falls back to the heuristic estimate;
// partial responses leave the missing keywords to fall back individually.
func (o *Orchestrator) fetchVolumes(ctx context.Context, keywords []string) map[string]int {
	if o.volumes == nil || !o.volumes.Configured() {
		return map[string]int{}
	}
	volumes, err := o.volumes.SearchVolumes(ctx, keywords)
	if err != nil {
		o.log.Warnf("search volume fetch failed, falling back to heuristic: %v", err)
		return map[string]int{}
	}
	return volumes
}

func (o *Orchestrator) lookupPosition(ctx context.Context, keyword, website, location string, limiter *rate.Limiter) *int {
	if err := limiter.Wait(ctx); err != nil {
		return nil
	}
	results, err := o.searcher.Search(ctx, keyword, location)
	if err != nil {
		o.log.Warnf("serp lookup failed for %q: %v", keyword, err)
		return nil
	}
	return serp.ResolvePosition(results, website)
}
