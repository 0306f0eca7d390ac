// Package payments talks to the external checkout gateway. The gateway
// is a collaborator, not part of this system: it issues a session handle
// for a checkout attempt and later answers whether that session was paid.
// Both calls are idempotent on the gateway side.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Session is the gateway's handle for one checkout attempt. The client is
// redirected to URL and comes back carrying ID.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionRequest describes the charge a session is created for.
type SessionRequest struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Purpose       string `json:"purpose"`
	CustomerEmail string `json:"customerEmail"`
	Reference     string `json:"reference"`
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	// VerifySession reports whether the session was actually paid. The
	// error return is for transport failures only; a cleanly rejected
	// session is (false, nil).
	VerifySession(ctx context.Context, sessionID string) (bool, error)
}

// HTTPGateway is the production Gateway over the provider's REST API.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *HTTPGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway create session: status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (g *HTTPGateway) VerifySession(ctx context.Context, sessionID string) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/sessions/"+sessionID, nil)
	if err != nil {
		return false, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("gateway verify session: status %d", resp.StatusCode)
	}

	var payload struct {
		Status string `json:"status"` // "paid", "unpaid", "expired"
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, err
	}
	return payload.Status == "paid", nil
}
