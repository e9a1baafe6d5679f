// Package store talks to the bill store API over HTTP.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/session"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Error is a non-successful response from the bill store. Its message is what
// the pages show to the employee.
type Error struct {
	Status int
}

func (e *Error) Error() string {
	return fmt.Sprintf("Erreur %d", e.Status)
}

// Client implements bill.Store against the bill store API
type Client struct {
	baseURL string
	storage session.Storage
	client  *http.Client
}

// NewClient creates a Client for the API at baseURL. The bearer token, when
// present, is read from the "jwt" item of storage on every request.
func NewClient(baseURL string, storage session.Storage) *Client {
	return NewClientWithHTTP(baseURL, storage, &http.Client{Timeout: 30 * time.Second})
}

// NewClientWithHTTP creates a Client using a custom HTTP client
func NewClientWithHTTP(baseURL string, storage session.Storage, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		storage: storage,
		client:  httpClient,
	}
}

// Bills returns the bill operations
func (c *Client) Bills() bill.Bills {
	return &bills{c: c}
}

type bills struct {
	c *Client
}

// List asks the store for the bills owned by the signed-in user
func (b *bills) List(ctx context.Context) ([]bill.Bill, error) {
	user, err := session.FromStorage(b.c.storage)()
	if err != nil {
		return nil, err
	}

	var out []bill.Bill
	query := url.Values{"email": {user.Email}}.Encode()
	if err := b.c.do(ctx, http.MethodGet, "/bills?"+query, nil, "", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []bill.Bill{}
	}
	return out, nil
}

func (b *bills) Create(ctx context.Context, upload bill.Upload) (*bill.Created, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(upload.FileName)))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}
	if err := writer.WriteField("email", upload.Email); err != nil {
		return nil, fmt.Errorf("writing email field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	var created bill.Created
	if err := b.c.do(ctx, http.MethodPost, "/bills", &body, writer.FormDataContentType(), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (b *bills) Update(ctx context.Context, id string, payload bill.Bill) (*bill.Bill, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling bill: %w", err)
	}

	var updated bill.Bill
	path := "/bills/" + url.PathEscape(id)
	if err := b.c.do(ctx, http.MethodPatch, path, bytes.NewReader(data), "application/json", &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.storage != nil {
		if token, ok := c.storage.GetItem(session.TokenKey); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling bill store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &Error{Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
