package offlinequeue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	syncEndpointPath   = "/api/v1/policies/sync"
	httpSubmitTimeout  = 15 * time.Second
	idempotencyHeader  = "Idempotency-Key"
	authorizationLabel = "Bearer %s"
)

// HTTPRemoteParams configure the API-backed remote store.
type HTTPRemoteParams struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// HTTPRemote submits queue entries to the policy sync endpoint one at a time.
// The temp id doubles as the idempotency key so replays after a dropped
// response resolve to the original row.
type HTTPRemote struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPRemote(params HTTPRemoteParams) (*HTTPRemote, error) {
	if params.BaseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: httpSubmitTimeout}
	}
	return &HTTPRemote{
		baseURL: params.BaseURL,
		token:   params.Token,
		client:  client,
	}, nil
}

type syncRequestEntry struct {
	TempID         string  `json:"tempId"`
	PolicyNumber   string  `json:"policyNumber,omitempty"`
	ProductID      string  `json:"productId"`
	CustomerName   string  `json:"customerName"`
	PhoneNumber    string  `json:"phoneNumber,omitempty"`
	PremiumAmount  string  `json:"premiumAmount"`
	LineOfBusiness string  `json:"lineOfBusiness"`
	InsurerID      string  `json:"insurerId,omitempty"`
	PolicyStart    *string `json:"policyStartDate,omitempty"`
	PolicyEnd      *string `json:"policyEndDate,omitempty"`
}

type syncRequestBody struct {
	Entries []syncRequestEntry `json:"entries"`
}

type syncResponseResult struct {
	TempID       string `json:"tempId"`
	Success      bool   `json:"success"`
	ID           string `json:"id"`
	PolicyNumber string `json:"policyNumber"`
	Error        string `json:"error"`
}

type syncResponseBody struct {
	Data struct {
		Results []syncResponseResult `json:"results"`
	} `json:"data"`
}

// Submit posts the entry as a single-element batch. Transport and decoding
// failures come back as errors; a rejected entry comes back as a failed
// result with the server's message.
func (r *HTTPRemote) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	entry := syncRequestEntry{
		TempID:         input.TempID,
		PolicyNumber:   input.PolicyNumber,
		ProductID:      input.ProductID,
		CustomerName:   input.CustomerName,
		PhoneNumber:    input.PhoneNumber,
		PremiumAmount:  input.PremiumAmount.String(),
		LineOfBusiness: input.LineOfBusiness,
		InsurerID:      input.InsurerID,
	}
	if input.PolicyStart != nil {
		start := input.PolicyStart.Format(time.RFC3339)
		entry.PolicyStart = &start
	}
	if input.PolicyEnd != nil {
		end := input.PolicyEnd.Format(time.RFC3339)
		entry.PolicyEnd = &end
	}

	payload, err := json.Marshal(syncRequestBody{Entries: []syncRequestEntry{entry}})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("encode sync request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+syncEndpointPath, bytes.NewReader(payload))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(idempotencyHeader, input.TempID)
	if r.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf(authorizationLabel, r.token))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("submit policy entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SubmitResult{}, fmt.Errorf("sync endpoint returned status %d", resp.StatusCode)
	}

	var body syncResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return SubmitResult{}, fmt.Errorf("decode sync response: %w", err)
	}

	for _, result := range body.Data.Results {
		if result.TempID != input.TempID {
			continue
		}
		return SubmitResult{
			Success:      result.Success,
			ID:           result.ID,
			PolicyNumber: result.PolicyNumber,
			Error:        result.Error,
		}, nil
	}
	return SubmitResult{}, fmt.Errorf("sync response missing result for %s", input.TempID)
}

// Probe reports whether the API is reachable by hitting the liveness route.
// Any non-5xx response counts as online.
func (r *HTTPRemote) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health/live", nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("api reported status %d", resp.StatusCode)
	}
	return nil
}
