package rest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/crosslink-crm/crosslink/internal/adapter"
	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/mapping"
	"github.com/crosslink-crm/crosslink/internal/provider"
)

// Config describes one remote contact API endpoint
type Config struct {
	BaseURL string
	APIKey  string
	// IDPath and UpdatedAtPath locate the contact id and last-modified
	// timestamp inside the remote's record payloads.
	IDPath        []string
	UpdatedAtPath []string
}

// Client is a generic JSON REST implementation of
// provider.ContactProvider. Both remote systems expose the same
// contact resource shape behind different base URLs and field payloads.
type Client struct {
	cfg  Config
	http adapter.HTTPClient

	mu     sync.RWMutex
	apiKey string
}

func NewClient(cfg Config, httpClient adapter.HTTPClient) *Client {
	if len(cfg.IDPath) == 0 {
		cfg.IDPath = []string{"id"}
	}
	if len(cfg.UpdatedAtPath) == 0 {
		cfg.UpdatedAtPath = []string{"updated_at"}
	}
	return &Client{cfg: cfg, http: httpClient, apiKey: cfg.APIKey}
}

// SetAPIKey swaps the bearer credential used on subsequent requests
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

func (c *Client) headers() map[string]string {
	c.mu.RLock()
	key := c.apiKey
	c.mu.RUnlock()

	h := map[string]string{"Accept": "application/json"}
	if key != "" {
		h["Authorization"] = "Bearer " + key
	}
	return h
}

func (c *Client) record(raw map[string]interface{}) (*domain.ContactRecord, error) {
	id := mapping.LookupString(raw, c.cfg.IDPath...)
	if id == "" {
		return nil, errors.New("remote record missing contact id")
	}
	updatedAt := mapping.LookupString(raw, c.cfg.UpdatedAtPath...)
	return &domain.ContactRecord{ID: id, Fields: raw, UpdatedAt: updatedAt}, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (*domain.ContactRecord, error) {
	var raw map[string]interface{}
	err := c.http.GetJSON(ctx, c.cfg.BaseURL+"/contacts/"+url.PathEscape(id), c.headers(), &raw)
	if err != nil {
		var statusErr *domain.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to fetch contact %s: %w", id, err)
	}
	return c.record(raw)
}

func (c *Client) FindByEmail(ctx context.Context, email string) (*domain.ContactRecord, error) {
	var resp struct {
		Results []map[string]interface{} `json:"results"`
	}
	u := c.cfg.BaseURL + "/contacts?email=" + url.QueryEscape(email)
	if err := c.http.GetJSON(ctx, u, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("failed to search contact by email: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return c.record(resp.Results[0])
}

func (c *Client) Create(ctx context.Context, fields domain.FlatFields) (*domain.ContactRecord, error) {
	var raw map[string]interface{}
	body := map[string]interface{}{"fields": fields}
	if err := c.http.PostJSON(ctx, c.cfg.BaseURL+"/contacts", c.headers(), body, &raw); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return c.record(raw)
}

func (c *Client) Update(ctx context.Context, id string, fields domain.FlatFields) error {
	body := map[string]interface{}{"fields": fields}
	u := c.cfg.BaseURL + "/contacts/" + url.PathEscape(id)
	if err := c.http.PutJSON(ctx, u, c.headers(), body, nil); err != nil {
		var statusErr *domain.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
			return domain.ErrContactNotFound
		}
		return fmt.Errorf("failed to update contact %s: %w", id, err)
	}
	return nil
}

func (c *Client) List(ctx context.Context, cursor string, limit int) (*provider.Page, error) {
	var resp struct {
		Results    []map[string]interface{} `json:"results"`
		NextCursor string                   `json:"next_cursor"`
	}
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := c.cfg.BaseURL + "/contacts"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	if err := c.http.GetJSON(ctx, u, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	page := &provider.Page{NextCursor: resp.NextCursor}
	for _, raw := range resp.Results {
		rec, err := c.record(raw)
		if err != nil {
			// Keep id-less records with an empty ID so sweeps can
			// account for them instead of silently shrinking the page
			rec = &domain.ContactRecord{
				Fields:    raw,
				UpdatedAt: mapping.LookupString(raw, c.cfg.UpdatedAtPath...),
			}
		}
		page.Records = append(page.Records, *rec)
	}
	return page, nil
}
