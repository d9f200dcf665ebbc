package foundryapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// recordPaths maps an inspection kind to its resource on the foundry API.
var recordPaths = map[string]string{
	"sample_card":         "/api/sample-card",
	"sand":                "/api/sand-inspection",
	"moulding":            "/api/moulding-inspection",
	"material_correction": "/api/material-correction",
	"pouring":             "/api/pouring-details",
	"visual":              "/api/visual-inspection",
	"metallurgical":       "/api/metallurgical-inspection",
	"dimensional":         "/api/dimensional-inspection",
	"machine_shop":        "/api/machine-shop-inspection",
}

func recordPath(kind string) (string, error) {
	p, ok := recordPaths[kind]
	if !ok {
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
	return p, nil
}

// ListMasterParts returns the master part reference list.
func (c *Client) ListMasterParts(ctx context.Context) ([]MasterPart, error) {
	var parts []MasterPart
	if err := c.doRequest(ctx, http.MethodGet, "/api/master-parts", nil, nil, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// GetRecord fetches the saved record of kind for a trial. A missing record
// yields an error wrapping ErrNotFound.
func (c *Client) GetRecord(ctx context.Context, kind, trialID string) (json.RawMessage, error) {
	p, err := recordPath(kind)
	if err != nil {
		return nil, err
	}
	var data json.RawMessage
	q := url.Values{"trial_id": {trialID}}
	if err := c.doRequest(ctx, http.MethodGet, p, q, nil, &data); err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "record not found", Path: p}
	}
	return data, nil
}

// CreateRecord submits a new record and returns the stored copy.
func (c *Client) CreateRecord(ctx context.Context, kind string, payload json.RawMessage) (json.RawMessage, error) {
	p, err := recordPath(kind)
	if err != nil {
		return nil, err
	}
	var data json.RawMessage
	if err := c.doRequest(ctx, http.MethodPost, p, nil, payload, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// UpdateRecord replaces the record keyed by the payload's trial_id.
func (c *Client) UpdateRecord(ctx context.Context, kind string, payload json.RawMessage) (json.RawMessage, error) {
	p, err := recordPath(kind)
	if err != nil {
		return nil, err
	}
	var data json.RawMessage
	if err := c.doRequest(ctx, http.MethodPut, p, nil, payload, &data); err != nil {
		return nil, err
	}
	return data, nil
}
