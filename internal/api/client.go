package api

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
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the backend reports a missing item or matter.
var ErrNotFound = errors.New("not found")

// Client wraps triage backend API interactions
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backend client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListInbox fetches the full inbox in server order
func (c *Client) ListInbox(ctx context.Context) ([]InboxItem, error) {
	req, err := c.newRequest(ctx, "GET", "/inbox", nil)
	if err != nil {
		return nil, err
	}

	var items []InboxItem
	if err := c.do(req, &items); err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	return items, nil
}

// GetInboxItem fetches a single inbox item, used by the status poller
func (c *Client) GetInboxItem(ctx context.Context, id string) (*InboxItem, error) {
	req, err := c.newRequest(ctx, "GET", "/inbox/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var item InboxItem
	if err := c.do(req, &item); err != nil {
		return nil, fmt.Errorf("failed to fetch inbox item %s: %w", id, err)
	}
	return &item, nil
}

// Upload submits one file and returns the created inbox item. The backend
// starts extraction asynchronously; the returned item is normally still
// in processing state.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*InboxItem, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/inbox/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Request-ID", uuid.NewString())

	var item InboxItem
	if err := c.do(req, &item); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	return &item, nil
}

// CreateMatter creates a new matter from the given inbox item
func (c *Client) CreateMatter(ctx context.Context, inboxItemID string, data *CreateMatterRequest) (*Matter, error) {
	path := "/matters?inbox_item_id=" + url.QueryEscape(inboxItemID)
	req, err := c.newRequest(ctx, "POST", path, data)
	if err != nil {
		return nil, err
	}

	var matter Matter
	if err := c.do(req, &matter); err != nil {
		return nil, fmt.Errorf("failed to create matter: %w", err)
	}
	return &matter, nil
}

// AttachDocument attaches an inbox item to an existing matter
func (c *Client) AttachDocument(ctx context.Context, matterID, inboxItemID string) error {
	path := "/matters/" + url.PathEscape(matterID) + "/documents"
	req, err := c.newRequest(ctx, "POST", path, &AttachDocumentRequest{InboxItemID: inboxItemID})
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("failed to attach document: %w", err)
	}
	return nil
}

// ListMatters fetches all matter summaries
func (c *Client) ListMatters(ctx context.Context) ([]Matter, error) {
	req, err := c.newRequest(ctx, "GET", "/matters", nil)
	if err != nil {
		return nil, err
	}

	var matters []Matter
	if err := c.do(req, &matters); err != nil {
		return nil, fmt.Errorf("failed to list matters: %w", err)
	}
	return matters, nil
}

// FetchDocument downloads the stored bytes of an uploaded file
func (c *Client) FetchDocument(ctx context.Context, filePath string) ([]byte, error) {
	req, err := c.newRequest(ctx, "GET", "/static/"+strings.TrimLeft(filePath, "/"), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", filePath, err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", filePath, err)
	}
	return data, nil
}

// newRequest builds a request with the JSON body and headers every call uses
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// do executes the request and decodes a JSON response into out when non-nil
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("backend API error: %d - %s", resp.StatusCode, string(body))
}
