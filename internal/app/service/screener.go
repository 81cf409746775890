package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Screener checks target URLs against an external reputation service
// (Google Safe Browsing v4). It is defense in depth, not the primary trust
// boundary: every failure mode of the lookup fails open.
type Screener struct {
	client   *http.Client
	logger   *zap.Logger
	endpoint string
	apiKey   string
}

// ScreenerOpts configures the screener. Client is optional; a client with
// the given timeout is built when absent.
type ScreenerOpts struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	Client   *http.Client
}

// NewScreener builds a screener with an explicitly injected HTTP client.
func NewScreener(opts ScreenerOpts, logger *zap.Logger) *Screener {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Screener{
		client:   client,
		logger:   logger,
		endpoint: opts.Endpoint,
		apiKey:   opts.APIKey,
	}
}

type threatEntry struct {
	URL string `json:"url"`
}

type threatRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string      `json:"threatTypes"`
		PlatformTypes    []string      `json:"platformTypes"`
		ThreatEntryTypes []string      `json:"threatEntryTypes"`
		ThreatEntries    []threatEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatResponse struct {
	Matches []json.RawMessage `json:"matches"`
}

// Screen reports whether the URL is considered safe. Without an API key the
// screener is disabled and everything passes. A reported match is a hard
// rejection for the caller; any lookup failure is a permissive pass.
func (s *Screener) Screen(ctx context.Context, targetURL string) bool {
	if s.apiKey == "" {
		return true
	}

	req := threatRequest{}
	req.Client.ClientID = "shorty-link"
	req.Client.ClientVersion = "1.0"
	req.ThreatInfo.ThreatTypes = []string{
		"MALWARE", "SOCIAL_ENGINEERING", "THREAT_TYPE_UNSPECIFIED", "UNWANTED_SOFTWARE",
	}
	req.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	req.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	req.ThreatInfo.ThreatEntries = []threatEntry{{URL: targetURL}}

	body, err := json.Marshal(req)
	if err != nil {
		s.logger.Warn("screener: marshal request, failing open", zap.Error(err))
		return true
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s?key=%s", s.endpoint, s.apiKey), bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("screener: build request, failing open", zap.Error(err))
		return true
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Warn("screener: lookup failed, failing open", zap.Error(err))
		return true
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("screener: non-success response, failing open",
			zap.Int("status", resp.StatusCode))
		return true
	}

	var result threatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		s.logger.Warn("screener: malformed response, failing open", zap.Error(err))
		return true
	}

	if len(result.Matches) > 0 {
		s.logger.Info("screener: threat match", zap.String("url", targetURL),
			zap.Int("matches", len(result.Matches)))
		return false
	}
	return true
}
