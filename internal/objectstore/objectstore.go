// Package objectstore talks to the hosted backend's storage API:
// signed-upload ticket issuance, uploads against a ticket, and signed
// read URLs for the admin document preview.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ObjectStore is the storage capability of the hosted backend.
type ObjectStore interface {
	// CreateSignedUploadURL issues a short-lived token authorizing one
	// write to bucket/path.
	CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error)
	// UploadToSignedURL writes the object bytes against a previously
	// issued token.
	UploadToSignedURL(ctx context.Context, bucket, path, token, contentType string, body io.Reader) error
	// CreateSignedURL issues a time-limited read URL for an object.
	CreateSignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
}

// Client is the HTTP implementation against the backend's storage
// endpoints, authenticated with the service key.
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) objectURL(kind, bucket, path string) string {
	return fmt.Sprintf("%s/object/%s/%s/%s", c.baseURL, kind, url.PathEscape(bucket), path)
}

func (c *Client) CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL("upload/sign", bucket, path), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign upload %s/%s: %w", bucket, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign upload %s/%s: unexpected status %d", bucket, path, resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("sign upload %s/%s: decode response: %w", bucket, path, err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("sign upload %s/%s: empty token", bucket, path)
	}
	return out.Token, nil
}

func (c *Client) UploadToSignedURL(ctx context.Context, bucket, path, token, contentType string, body io.Reader) error {
	u := c.objectURL("upload/sign", bucket, path) + "?token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upload %s/%s: unexpected status %d", bucket, path, resp.StatusCode)
	}
	return nil
}

func (c *Client) CreateSignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	payload, err := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL("sign", bucket, path), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign read %s/%s: %w", bucket, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign read %s/%s: unexpected status %d", bucket, path, resp.StatusCode)
	}

	var out struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("sign read %s/%s: decode response: %w", bucket, path, err)
	}
	return out.SignedURL, nil
}
