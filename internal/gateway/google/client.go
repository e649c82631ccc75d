// Package google is a REST client for the Google Calendar and Sheets APIs,
// authenticated with per-user OAuth credentials from the credential store.
package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/dromero/barberbot/internal/config"
	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/pkg/metrics"
)

// Service wraps calendar and sheet operations over a token-refreshing HTTP
// client bound to one user's credentials.
type Service struct {
	httpClient  *http.Client
	calendarURL string
	sheetsURL   string
	metrics     *metrics.Metrics
}

// NewService builds a live gateway from a stored credential record. The
// oauth2 transport refreshes the access token transparently when it has
// expired and a refresh token is present.
func NewService(cfg config.GoogleConfig, cred *model.Credential, m *metrics.Metrics) (*Service, error) {
	if !cred.Valid() {
		return nil, fmt.Errorf("credential has no usable tokens")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cred.TokenURL,
		},
		Scopes: cred.Scopes,
	}

	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
	}

	client := oauthCfg.Client(context.Background(), token)
	client.Timeout = 15 * time.Second

	return &Service{
		httpClient:  client,
		calendarURL: cfg.CalendarURL,
		sheetsURL:   cfg.SheetsURL,
		metrics:     m,
	}, nil
}

func (s *Service) do(req *http.Request, operation string) (*http.Response, error) {
	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if s.metrics != nil {
		s.metrics.GatewayLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil || resp.StatusCode >= 400 {
			status = "error"
		}
		s.metrics.GatewayRequests.WithLabelValues(operation, status).Inc()
	}
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned %d: %s", operation, resp.StatusCode, body)
	}
	return resp, nil
}
