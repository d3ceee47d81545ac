// Package client is the Go client for a running churnd instance, used
// by churnctl and available to other services that want churn scores
// over HTTP.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"churnd/internal/artifact"
	"churnd/internal/churn"
)

// Client talks to the churnd HTTP API.
type Client struct {
	base string
	rest *resty.Client
}

// New creates a client against base, e.g. "http://localhost:8000".
func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second) // default fallback
	}
	return &Client{base: base, rest: r}
}

// BatchResult mirrors the batch endpoint's response body.
type BatchResult struct {
	Predictions []churn.Prediction `json:"predictions"`
	churn.BatchSummary
}

// Health mirrors the health endpoint's response body.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type apiError struct {
	Message string `json:"error"`
}

// PredictOne scores a single customer.
func (c *Client) PredictOne(ctx context.Context, record churn.CustomerRecord) (*churn.Prediction, error) {
	pred := &churn.Prediction{}
	apiErr := &apiError{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(record).
		SetResult(pred).
		SetError(apiErr).
		Post(c.base + "/predict")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("churnd %s: %s", resp.Status(), apiErr.Message)
	}
	return pred, nil
}

// PredictBatch scores a batch; predictions come back in input order.
func (c *Client) PredictBatch(ctx context.Context, records []churn.CustomerRecord) (*BatchResult, error) {
	result := &BatchResult{}
	apiErr := &apiError{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]any{"customers": records}).
		SetResult(result).
		SetError(apiErr).
		Post(c.base + "/predict/batch")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("churnd %s: %s", resp.Status(), apiErr.Message)
	}
	return result, nil
}

// ModelInfo fetches the loaded model's training metadata.
func (c *Client) ModelInfo(ctx context.Context) (*artifact.Metadata, error) {
	meta := &artifact.Metadata{}
	apiErr := &apiError{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(meta).
		SetError(apiErr).
		Get(c.base + "/model/info")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("churnd %s: %s", resp.Status(), apiErr.Message)
	}
	return meta, nil
}

// CheckHealth reports whether the service is up with a loaded model.
func (c *Client) CheckHealth(ctx context.Context) (*Health, error) {
	health := &Health{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(health).
		SetError(health).
		Get(c.base + "/health")
	if err != nil {
		return nil, err
	}
	// /health serves a body on 503 too; surface it rather than erroring.
	if resp.IsError() && health.Status == "" {
		return nil, fmt.Errorf("churnd %s", resp.Status())
	}
	return health, nil
}
