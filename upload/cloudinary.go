// Package upload forwards image files to the hosted image service and
// returns the resulting secure URLs for storage on game and user records.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/playvault/server/logger"
)

// Client posts unsigned multipart uploads to a Cloudinary-style endpoint.
type Client struct {
	endpoint string
	preset   string
	client   *http.Client
}

func NewClient(endpoint, preset string) *Client {
	return &Client{
		endpoint: endpoint,
		preset:   preset,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends one file and returns its hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, data io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", err
	}
	if err := writer.WriteField("upload_preset", c.preset); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image upload failed: %s", resp.Status)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("image upload returned no secure_url")
	}
	return parsed.SecureURL, nil
}

// File is one pending upload.
type File struct {
	Name string
	Data io.Reader
}

// UploadAll uploads files in order, skipping failures and returning the
// URLs that succeeded, matching the storefront's tolerant behavior.
func (c *Client) UploadAll(ctx context.Context, files []File) []string {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := c.Upload(ctx, f.Name, f.Data)
		if err != nil {
			logger.Log.Warnf("Failed to upload image %s: %v", f.Name, err)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
