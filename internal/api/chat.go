package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
)

// SendChat posts one assistant query for a case and returns the stored
// exchange. The endpoint takes a multipart form rather than JSON.
func (c *Client) SendChat(ctx context.Context, caseID, query string) (*ChatMessage, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("case_id", caseID); err != nil {
		return nil, fmt.Errorf("send chat: write case_id: %w", err)
	}
	if err := writer.WriteField("query", query); err != nil {
		return nil, fmt.Errorf("send chat: write query: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("send chat: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/chatbot/chat", &buf)
	if err != nil {
		return nil, fmt.Errorf("send chat: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var msg ChatMessage
	if err := c.do(req, &msg); err != nil {
		return nil, fmt.Errorf("send chat: %w", err)
	}
	if msg.Query == "" {
		msg.Query = query
	}
	return &msg, nil
}

// ChatHistory returns a case's stored exchanges in append order.
func (c *Client) ChatHistory(ctx context.Context, caseID string) ([]ChatMessage, error) {
	var resp struct {
		Chats []ChatMessage `json:"chats"`
	}
	path := "/api/v1/case/" + url.PathEscape(caseID) + "/chats"
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("chat history %s: %w", caseID, err)
	}
	return resp.Chats, nil
}
