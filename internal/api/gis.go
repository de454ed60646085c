package api

import (
	"context"
	"fmt"
)

// AnalyzeAddress runs a one-shot GIS risk analysis for an address. Each call
// is stateless; the backend keeps nothing between submissions.
func (c *Client) AnalyzeAddress(ctx context.Context, address string) (*GISResult, error) {
	body := struct {
		Address string `json:"address"`
	}{Address: address}

	var result GISResult
	if err := c.postJSON(ctx, "/api/v1/gis/analyze", body, &result); err != nil {
		return nil, fmt.Errorf("gis analyze: %w", err)
	}
	if result.Address == "" {
		result.Address = address
	}
	return &result, nil
}
