// Package catalog is the sole network egress point of the console. It
// wraps the remote catalog service's HTTP API: JSON in, JSON out, with
// non-success responses normalized into *APIError.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the catalog service. All persistence, validation
// authority and business rules live on the remote side; the client never
// retries and never caches.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
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

// APIError is a non-success response from the catalog service. Message is
// the server-supplied detail when one could be extracted, otherwise the
// raw status line. FieldErrors maps form field names to per-field
// validation messages when the server returned them.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsDuplicateLink reports whether err is the catalog service rejecting a
// link because the (supplier, product) pair is already associated. The
// service defines no error code for this, so the message text is matched;
// keeping the match here means a future error code changes one function.
func IsDuplicateLink(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "already associated") || strings.Contains(msg, "já está associado")
}

// ListProducts fetches the full product collection.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct submits a product creation and returns the server's
// confirmation message when it sends one.
func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (string, error) {
	var res messageResponse
	if err := c.do(ctx, http.MethodPost, "/products", req, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// ListSuppliers fetches the full supplier collection.
func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var suppliers []Supplier
	if err := c.do(ctx, http.MethodGet, "/suppliers", nil, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}

// CreateSupplier submits a supplier creation.
func (c *Client) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (string, error) {
	var res messageResponse
	if err := c.do(ctx, http.MethodPost, "/suppliers", req, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// SupplierProducts fetches the products linked to a supplier together
// with the negotiated price, lead time and link timestamp of each.
func (c *Client) SupplierProducts(ctx context.Context, supplierID int64) (SupplierProducts, error) {
	var res SupplierProducts
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/suppliers/%d/products", supplierID), nil, &res)
	return res, err
}

// ProductSuppliers fetches the suppliers linked to a product.
func (c *Client) ProductSuppliers(ctx context.Context, productID int64) (ProductSuppliers, error) {
	var res ProductSuppliers
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/suppliers", productID), nil, &res)
	return res, err
}

// Link associates a supplier with a product. The server enforces the
// at-most-once invariant; a duplicate surfaces as an APIError that
// IsDuplicateLink recognizes.
func (c *Client) Link(ctx context.Context, supplierID, productID int64, req LinkRequest) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/suppliers/%d/products/%d", supplierID, productID), req, nil)
}

// Unlink removes the association between a supplier and a product.
func (c *Client) Unlink(ctx context.Context, supplierID, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/suppliers/%d/products/%d", supplierID, productID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return c.apiError(resp, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	// An unparsable success body counts as an empty result.
	_ = json.Unmarshal(data, out)
	return nil
}

func (c *Client) apiError(resp *http.Response, body []byte) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var payload struct {
		Error       string            `json:"error"`
		FieldErrors map[string]string `json:"fieldErrors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.FieldErrors = payload.FieldErrors
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}
