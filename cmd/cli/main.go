package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"optimise-growth-tools/internal/ads"
	"optimise-growth-tools/internal/audit"
	"optimise-growth-tools/internal/config"
	"optimise-growth-tools/internal/export"
	"optimise-growth-tools/internal/fetcher"
	"optimise-growth-tools/internal/models"
	"optimise-growth-tools/internal/serp"
	"optimise-growth-tools/internal/tracker"
	"optimise-growth-tools/internal/urlutil"
	"optimise-growth-tools/pkg/logger"
)

func main() {
	auditURL := flag.String("audit", "", "run a one-shot conversion audit for this URL")
	goal := flag.String("goal", "sign up", "conversion goal for the audit")
	business := flag.String("business", "saas", "business type for the audit")
	keywordFile := flag.String("keywords", "", "keyword list file (plain lines or csv with 'keyword' column)")
	website := flag.String("website", "", "target website for keyword tracking")
	location := flag.String("location", "us:new-york", "search location code")
	out := flag.String("output", "", "output file (default stdout)")
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	l := logger.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create output:", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	switch {
	case *auditURL != "":
		runAudit(cfg, w, *auditURL, *goal, *business)
	case *keywordFile != "":
		if *website == "" {
			fmt.Fprintln(os.Stderr, "missing --website")
			os.Exit(2)
		}
		runTracking(cfg, l, w, *keywordFile, *website, *location)
	default:
		fmt.Fprintln(os.Stderr, "nothing to do: pass --audit URL or --keywords FILE --website SITE")
		os.Exit(2)
	}
}

func runAudit(cfg *config.Config, w *os.File, rawURL, goal, business string) {
	timeout := time.Duration(cfg.Audit.TimeoutSec) * time.Second
	pages := fetcher.NewClient(timeout, 5*time.Second, cfg.Audit.MaxBodySize)
	auditor := audit.New(pages, timeout)

	result, err := auditor.Run(context.Background(), audit.Request{
		WebsiteURL:     urlutil.NormalizeURL(rawURL),
		ConversionGoal: goal,
		BusinessType:   business,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "audit:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

func runTracking(cfg *config.Config, l *logger.Logger, w *os.File, file, website, location string) {
	keywords, err := export.ReadKeywordList(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read keywords:", err)
		os.Exit(1)
	}
	if len(keywords) > cfg.Tracker.MaxKeywords {
		keywords = keywords[:cfg.Tracker.MaxKeywords]
	}

	searcher := serp.NewClient(cfg.Serper.APIKey, cfg.Serper.BaseURL)
	adsClient := ads.NewClient(ads.Credentials{
		ClientID:       cfg.GoogleAds.ClientID,
		ClientSecret:   cfg.GoogleAds.ClientSecret,
		RefreshToken:   cfg.GoogleAds.RefreshToken,
		DeveloperToken: cfg.GoogleAds.DeveloperToken,
		CustomerID:     cfg.GoogleAds.CustomerID,
	})
	orch := tracker.New(searcher, adsClient,
		time.Duration(cfg.Tracker.DelayMS)*time.Millisecond,
		time.Duration(cfg.Tracker.RefreshDelayMS)*time.Millisecond,
		l)

	site := urlutil.NormalizeURL(website)
	results := orch.TrackBatch(context.Background(), keywords, site, location)

	now := time.Now()
	rows := make([]models.KeywordWithProject, 0, len(results))
	for i, res := range results {
		rows = append(rows, models.KeywordWithProject{
			Keyword: models.Keyword{
				ID:           i + 1,
				Keyword:      res.Keyword,
				Position:     res.Position,
				SearchVolume: res.SearchVolume,
				Opportunity:  res.Opportunity,
				Location:     location,
				LastUpdated:  now,
			},
			Project: models.Project{Website: site},
		})
	}
	if err := export.WriteKeywordCSV(w, rows, nil); err != nil {
		fmt.Fprintln(os.Stderr, "write csv:", err)
		os.Exit(1)
	}
}
