package audit

import (
	"context"
	"fmt"
	"time"

	"optimise-growth-tools/internal/extractor"
	"optimise-growth-tools/internal/fetcher"
	"optimise-growth-tools/internal/models"
)

// Request carries the normalized audit parameters.
type Request struct {
	WebsiteURL     string
	ConversionGoal string
	BusinessType   string
}

// Result is the full outcome of one audit run, before persistence.
type Result struct {
	Scores           models.ScoreSet
	Findings         []models.Finding
	Recommendations  []models.Recommendation
	ExtractedContent models.ContentPreview
}

// Auditor fetches a page, extracts signals and scores them. A fetch or
// parse failure fails the whole audit; no partial result is produced.
type Auditor struct {
	fetcher   *fetcher.Client
	extractor *extractor.Extractor
	timeout   time.Duration
}

func New(f *fetcher.Client, timeout time.Duration) *Auditor {
	return &Auditor{
		fetcher:   f,
		extractor: extractor.New(),
		timeout:   timeout,
	}
}

func (a *Auditor) Run(ctx context.Context, req Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body, _, contentType, err := a.fetcher.Fetch(ctx, req.WebsiteURL)
	if err != nil {
		return Result{}, fmt.Errorf("failed to analyze website: %w", err)
	}
	defer body.Close()

	sig, err := a.extractor.Extract(body, contentType, req.ConversionGoal)
	if err != nil {
		return Result{}, fmt.Errorf("failed to analyze website: %w", err)
	}

	return Result{
		Scores:           Score(sig),
		Findings:         Findings(sig),
		Recommendations:  Recommendations(sig),
		ExtractedContent: sig.Preview,
	}, nil
}
