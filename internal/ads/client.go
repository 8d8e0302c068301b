package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultAPIURL   = "https://googleads.googleapis.com/v18"

	// tokens are treated as expired this long before their stated expiry
	// so an about-to-expire token is never used mid-request
	expiryBuffer = 60 * time.Second
)

// Credentials configure the Google Ads keyword-metrics provider. The
// client is unconfigured (and every lookup falls back to the heuristic
// estimator) unless all five fields are present.
type Credentials struct {
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	DeveloperToken string
	CustomerID     string
}

type tokenCache struct {
	accessToken string
	expiresAt   time.Time
}

// Client fetches average monthly search volumes from the Google Ads
// Keyword Planner, exchanging a refresh token for short-lived access
// tokens and caching them until near expiry.
type Client struct {
	creds      Credentials
	tokenURL   string
	apiURL     string
	httpClient *http.Client
	token      *tokenCache
	now        func() time.Time
}

func NewClient(creds Credentials) *Client {
	creds.CustomerID = strings.ReplaceAll(creds.CustomerID, "-", "")
	return &Client{
		creds:    creds,
		tokenURL: defaultTokenURL,
		apiURL:   defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

func (c *Client) Configured() bool {
	return c.creds.ClientID != "" &&
		c.creds.ClientSecret != "" &&
		c.creds.RefreshToken != "" &&
		c.creds.DeveloperToken != "" &&
		c.creds.CustomerID != ""
}

func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	if c.token != nil && c.now().Before(c.token.expiresAt.Add(-expiryBuffer)) {
		return c.token.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.creds.ClientID},
		"client_secret": {c.creds.ClientSecret},
		"refresh_token": {c.creds.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token refresh failed (%d): %s", resp.StatusCode, body)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}

	c.token = &tokenCache{
		accessToken: tok.AccessToken,
		expiresAt:   c.now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}
	return c.token.accessToken, nil
}

type metricsRequest struct {
	Keywords           []string `json:"keywords"`
	Language           string   `json:"language"`
	GeoTargetConstants []string `json:"geoTargetConstants"`
}

type metricsResponse struct {
	Results []struct {
		Text           string `json:"text"`
		KeywordMetrics struct {
			AvgMonthlySearches json.Number `json:"avgMonthlySearches"`
		} `json:"keywordMetrics"`
	} `json:"results"`
}

// SearchVolumes returns average monthly search volume keyed by lower-cased
// keyword. Keywords missing from the response are simply absent from the
// map; callers fall back individually.
func (c *Client) SearchVolumes(ctx context.Context, keywords []string) (map[string]int, error) {
	if !c.Configured() || len(keywords) == 0 {
		return map[string]int{}, nil
	}

	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(metricsRequest{
		Keywords:           keywords,
		Language:           "languageConstants/1000",
		GeoTargetConstants: []string{"geoTargetConstants/2840"},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/customers/%s:generateKeywordHistoricalMetrics", c.apiURL, c.creds.CustomerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("developer-token", c.creds.DeveloperToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google ads api error (%d): %s", resp.StatusCode, body)
	}

	var mr metricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, err
	}

	volumes := make(map[string]int, len(mr.Results))
	for _, r := range mr.Results {
		if r.Text == "" {
			continue
		}
		v, _ := r.KeywordMetrics.AvgMonthlySearches.Int64()
		volumes[strings.ToLower(r.Text)] = int(v)
	}
	return volumes, nil
}
