// Package dataloop is a minimal client for the Dataloop platform REST API,
// covering the dataset, item, and annotation operations the bridge needs.
package dataloop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dataloop-ai-apps/databricks-bridge/internal/config"
	"github.com/dataloop-ai-apps/databricks-bridge/internal/logger"
)

// ErrNotFound is returned when the platform reports a missing resource.
var ErrNotFound = errors.New("not found")

// Client talks to the Dataloop REST API with bearer-token auth.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a Client from configuration.
func New(cfg *config.DataloopConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

// do issues one authenticated request and decodes a JSON response into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp, method, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
	}
	return nil
}

// parseError extracts the platform error envelope, falling back to the
// status text.
func parseError(resp *http.Response, method, path string) error {
	var envelope errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
		return fmt.Errorf("%s %s: %s (status %d)", method, path, envelope.Message, resp.StatusCode)
	}
	return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
}

// Dataset fetches a dataset by id.
func (c *Client) Dataset(ctx context.Context, datasetID string) (*Dataset, error) {
	var dataset Dataset
	if err := c.do(ctx, http.MethodGet, "/datasets/"+url.PathEscape(datasetID), "", nil, &dataset); err != nil {
		return nil, err
	}
	return &dataset, nil
}

// Item fetches an item by id.
func (c *Client) Item(ctx context.Context, itemID string) (*Item, error) {
	var item Item
	if err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(itemID), "", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

type annotationList struct {
	Items []Annotation `json:"items"`
}

// ItemAnnotations lists all annotations attached to an item, in platform
// list order.
func (c *Client) ItemAnnotations(ctx context.Context, itemID string) ([]Annotation, error) {
	var list annotationList
	if err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(itemID)+"/annotations", "", nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// UploadPromptItems uploads prepared prompt items to a dataset. Existing
// items with the same name are overwritten when overwrite is set.
func (c *Client) UploadPromptItems(ctx context.Context, datasetID string, items []*PromptItem, overwrite bool) ([]Item, error) {
	uploaded := make([]Item, 0, len(items))
	for _, promptItem := range items {
		content, err := promptItem.MarshalContent()
		if err != nil {
			return uploaded, fmt.Errorf("failed to serialize prompt item %q: %w", promptItem.Name, err)
		}

		item, err := c.uploadFile(ctx, datasetID, promptItem.FileName(), bytes.NewReader(content), overwrite)
		if err != nil {
			return uploaded, fmt.Errorf("failed to upload prompt item %q: %w", promptItem.Name, err)
		}
		uploaded = append(uploaded, *item)
	}
	return uploaded, nil
}

// UploadFolder uploads every regular file in localDir (non-recursive) to the
// dataset. Returns the uploaded items; an empty folder yields an empty,
// non-nil slice.
func (c *Client) UploadFolder(ctx context.Context, datasetID, localDir string, overwrite bool) ([]Item, error) {
	entries, err := os.ReadDir(localDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %q: %w", localDir, err)
	}

	uploaded := []Item{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		f, err := os.Open(filepath.Join(localDir, entry.Name()))
		if err != nil {
			return uploaded, fmt.Errorf("failed to open %q: %w", entry.Name(), err)
		}

		item, uploadErr := c.uploadFile(ctx, datasetID, entry.Name(), f, overwrite)
		f.Close()
		if uploadErr != nil {
			return uploaded, fmt.Errorf("failed to upload %q: %w", entry.Name(), uploadErr)
		}
		uploaded = append(uploaded, *item)
	}
	return uploaded, nil
}

// uploadFile posts one file to the dataset items endpoint as multipart form
// data.
func (c *Client) uploadFile(ctx context.Context, datasetID, name string, content io.Reader, overwrite bool) (*Item, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/datasets/%s/items?overwrite=%t", url.PathEscape(datasetID), overwrite)

	var item Item
	if err := c.do(ctx, http.MethodPost, path, writer.FormDataContentType(), &buf, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemContent fetches the raw file content of an item.
func (c *Client) ItemContent(ctx context.Context, itemID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/items/"+url.PathEscape(itemID)+"/stream", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp, http.MethodGet, "/items/"+itemID+"/stream")
	}

	return io.ReadAll(resp.Body)
}

// DownloadItem streams an item's content to a local file.
func (c *Client) DownloadItem(ctx context.Context, itemID, localPath string) error {
	content, err := c.ItemContent(ctx, itemID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(localPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", localPath, err)
	}
	return nil
}
