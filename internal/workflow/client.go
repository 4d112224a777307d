// Package workflow talks to the hosted automation platform that writes
// captions, renders derivatives and posts carousels to Instagram.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/preset"
)

type CaptionRequest struct {
	CarouselID uuid.UUID     `json:"carousel_id"`
	Title      string        `json:"title"`
	ImageURLs  []string      `json:"image_urls"`
	Preset     preset.Preset `json:"preset"`
}

type CaptionResponse struct {
	Caption string `json:"caption"`
}

type PublishRequest struct {
	CarouselID uuid.UUID `json:"carousel_id"`
	Caption    string    `json:"caption"`
	Aspect     string    `json:"aspect"`
	ImageURLs  []string  `json:"image_urls"`
}

type PublishResponse struct {
	MediaID   string `json:"media_id"`
	Permalink string `json:"permalink"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) GenerateCaption(ctx context.Context, req CaptionRequest) (string, error) {
	var resp CaptionResponse
	if err := c.post(ctx, "/caption", req, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Caption) == "" {
		return "", fmt.Errorf("%w: workflow returned an empty caption", apperr.ErrNetwork)
	}
	return resp.Caption, nil
}

func (c *Client) Publish(ctx context.Context, req PublishRequest) (*PublishResponse, error) {
	var resp PublishResponse
	if err := c.post(ctx, "/publish", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: workflow url is not configured", apperr.ErrNetwork)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e errorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: %s (status code: %d)", apperr.ErrNetwork, e.Error, resp.StatusCode)
		}
		return fmt.Errorf("%w: status code %d", apperr.ErrNetwork, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", apperr.ErrNetwork, err)
	}
	return nil
}
