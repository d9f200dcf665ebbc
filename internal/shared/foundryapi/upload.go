package foundryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

const uploadPath = "/api/documents/upload"

// UploadFiles sends req as multipart/form-data.
func (c *Client) UploadFiles(ctx context.Context, req UploadRequest) ([]UploadedDocument, error) {
	if len(req.Files) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"trial_id", req.TrialID},
		{"category", req.Category},
		{"uploaded_by", req.UploadedBy},
		{"remarks", req.Remarks},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	for _, f := range req.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	var docs []UploadedDocument
	if err := c.send(httpReq, uploadPath, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// PublicIP resolves the caller's public address. It is only printed on
// reports, so callers treat a failure as cosmetic.
func (c *Client) PublicIP(ctx context.Context) (string, error) {
	if c.publicIPURL == "" {
		return "", fmt.Errorf("public ip lookup is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.publicIPURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup public ip: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup public ip: status %d", resp.StatusCode)
	}
	var result struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode public ip: %w", err)
	}
	return result.IP, nil
}
