package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CaseHistory returns the signed-in user's cases (metadata only), in the
// order the backend reports them.
func (c *Client) CaseHistory(ctx context.Context) ([]CaseSummary, error) {
	var resp struct {
		Cases []CaseSummary `json:"cases"`
	}
	if err := c.getJSON(ctx, "/api/v1/case/history", &resp); err != nil {
		return nil, fmt.Errorf("case history: %w", err)
	}
	return resp.Cases, nil
}

// CaseDetail returns the full case payload: metadata and AI summary.
func (c *Client) CaseDetail(ctx context.Context, caseID string) (*CaseData, error) {
	var data CaseData
	if err := c.getJSON(ctx, "/api/v1/case/"+url.PathEscape(caseID), &data); err != nil {
		return nil, fmt.Errorf("case detail %s: %w", caseID, err)
	}
	return &data, nil
}

// CreateCase uploads the main document plus any supporting documents and
// returns the new case id. Title and address travel as query parameters,
// matching the portal's upload contract. A client-generated idempotency key
// accompanies the request so an accidental resubmission of the same upload
// does not mint a second case.
func (c *Client) CreateCase(ctx context.Context, title, address, mainDocument string, supportingDocuments []string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := attachFile(writer, "document", mainDocument); err != nil {
		return "", fmt.Errorf("create case: %w", err)
	}
	for _, doc := range supportingDocuments {
		if err := attachFile(writer, "supporting_documents", doc); err != nil {
			return "", fmt.Errorf("create case: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("create case: close multipart: %w", err)
	}

	query := url.Values{}
	query.Set("title", title)
	query.Set("address", address)
	endpoint := c.baseURL + "/api/v1/case/create?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("create case: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	var resp struct {
		CaseID string `json:"case_id"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("create case: %w", err)
	}
	return resp.CaseID, nil
}

// SetCaseStatus posts a resolve or abort action. Only valid for Open cases;
// the backend enforces this and the returned change carries the final
// status and remarks to merge locally.
func (c *Client) SetCaseStatus(ctx context.Context, caseID, action, remarks string) (*StatusChange, error) {
	if action != "resolve" && action != "abort" {
		return nil, fmt.Errorf("set case status: unknown action %q", action)
	}
	body := struct {
		Remarks string `json:"remarks"`
	}{Remarks: remarks}

	var change StatusChange
	path := "/api/v1/case/" + url.PathEscape(caseID) + "/" + action
	if err := c.postJSON(ctx, path, body, &change); err != nil {
		return nil, fmt.Errorf("%s case %s: %w", action, caseID, err)
	}
	if change.Status == "" {
		// Some backend builds return only a message; derive the status from
		// the action so callers can still merge it.
		if action == "resolve" {
			change.Status = StatusResolved
		} else {
			change.Status = StatusAborted
		}
	}
	return &change, nil
}

// IsAdmin reports whether the signed-in user may access the report dashboard.
func (c *Client) IsAdmin(ctx context.Context) (bool, error) {
	var resp struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.getJSON(ctx, "/api/v1/case/is_admin", &resp); err != nil {
		return false, fmt.Errorf("admin check: %w", err)
	}
	return resp.IsAdmin, nil
}

// attachFile streams a local file into a multipart field.
func attachFile(writer *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}
	return nil
}
