package api

import (
	"context"
	"fmt"
	"net/url"
)

// CreateReport submits a property report and returns the new report id,
// when the backend includes one.
func (c *Client) CreateReport(ctx context.Context, report Report) (string, error) {
	var resp struct {
		ReportID string `json:"report_id"`
		ID       string `json:"id"`
	}
	if err := c.postJSON(ctx, "/api/v1/report/create", report, &resp); err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if resp.ReportID != "" {
		return resp.ReportID, nil
	}
	return resp.ID, nil
}

// AllReports lists every submitted report. Admin only.
func (c *Client) AllReports(ctx context.Context) ([]Report, error) {
	var resp struct {
		Reports []Report `json:"reports"`
	}
	if err := c.getJSON(ctx, "/api/v1/report/all", &resp); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return resp.Reports, nil
}

// ReportAction verifies or rejects a report. Admin only.
func (c *Client) ReportAction(ctx context.Context, reportID, action string) error {
	if action != "verify" && action != "reject" {
		return fmt.Errorf("report action: unknown action %q", action)
	}
	path := "/api/v1/report/" + url.PathEscape(reportID) + "/" + action
	if err := c.postJSON(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("%s report %s: %w", action, reportID, err)
	}
	return nil
}
