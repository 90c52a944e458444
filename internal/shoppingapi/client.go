package shoppingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shoplist/internal/config"
	"shoplist/internal/shopping"
)

// Client talks to the shopping list API over HTTP. It implements
// shopping.Backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        *Key
}

var _ shopping.Backend = (*Client)(nil)

// NewClient creates a client for cfg.APIURL. When cfg.APIKey is set every
// request carries a signed bearer token.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("SHOPLIST_API_URL environment variable not set")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
	}
	if cfg.APIKey != "" {
		key, err := ParseKey(cfg.APIKey)
		if err != nil {
			return nil, err
		}
		c.key = &key
	}
	return c, nil
}

// ListCategories fetches GET /categories.
func (c *Client) ListCategories(ctx context.Context) ([]shopping.Category, error) {
	var categories []shopping.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory posts a new category name.
func (c *Client) CreateCategory(ctx context.Context, name string) (shopping.Category, error) {
	var cat shopping.Category
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/categories", body, &cat); err != nil {
		return shopping.Category{}, err
	}
	return cat, nil
}

// ListShoppingLists fetches GET /shopping-lists.
func (c *Client) ListShoppingLists(ctx context.Context) ([]shopping.ShoppingList, error) {
	var lists []shopping.ShoppingList
	if err := c.do(ctx, http.MethodGet, "/shopping-lists", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// GetShoppingList fetches one list by id.
func (c *Client) GetShoppingList(ctx context.Context, id string) (*shopping.ShoppingList, error) {
	var list shopping.ShoppingList
	if err := c.do(ctx, http.MethodGet, listPath(id), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateShoppingList posts a new list.
func (c *Client) CreateShoppingList(ctx context.Context, sub shopping.Submission) (*shopping.ShoppingList, error) {
	var list shopping.ShoppingList
	if err := c.do(ctx, http.MethodPost, "/shopping-lists", sub, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdateShoppingList replaces a list's name and items.
func (c *Client) UpdateShoppingList(ctx context.Context, id string, sub shopping.Submission) (*shopping.ShoppingList, error) {
	var list shopping.ShoppingList
	if err := c.do(ctx, http.MethodPut, listPath(id), sub, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteShoppingList deletes a list by id.
func (c *Client) DeleteShoppingList(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, listPath(id), nil, nil)
}

func listPath(id string) string {
	return "/shopping-lists/" + url.PathEscape(id)
}

// do sends one request and decodes a JSON response into out when out is
// non-nil. Non-2xx statuses are errors; 404 wraps shopping.ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != nil {
		token, err := NewToken(*c.key, time.Now())
		if err != nil {
			return fmt.Errorf("failed to create api token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, shopping.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("api error: %s %s: status %d, body: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
