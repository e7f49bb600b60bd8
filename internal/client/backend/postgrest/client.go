// Package postgrest implements backend.DataClient over the data service's
// REST API (/rest/v1). Requests carry the signed-in user's access token so
// row-level security applies; without a session the public key is used.
package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
)

const objectMediaType = "application/vnd.pgrst.object+json"

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	baseURL string
	apiKey  string
	token   backend.TokenSource
	http    *http.Client
}

var _ backend.DataClient = (*Client)(nil)

func New(projectURL, apiKey string, token backend.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(projectURL, "/") + "/rest/v1",
		apiKey:  apiKey,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Select(ctx context.Context, table, columns string, filters []backend.Eq, dest any) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.tableURL(table, columns, filters), nil)
	if err != nil {
		return err
	}
	if err := backend.Do(c.http, req, dest); err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

func (c *Client) SelectOne(ctx context.Context, table, columns string, filters []backend.Eq, dest any) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.tableURL(table, columns, filters), nil)
	if err != nil {
		return err
	}
	// the service answers 406 when the filter matches no row
	req.Header.Set("Accept", objectMediaType)
	if err := backend.Do(c.http, req, dest); err != nil {
		return fmt.Errorf("select one %s: %w", table, err)
	}
	return nil
}

func (c *Client) Upsert(ctx context.Context, table string, row any) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/"+url.PathEscape(table), row)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=minimal")
	if err := backend.Do(c.http, req, nil); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

func (c *Client) RPC(ctx context.Context, fn string, args any, dest any) error {
	if args == nil {
		args = struct{}{}
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/rpc/"+url.PathEscape(fn), args)
	if err != nil {
		return err
	}
	if err := backend.Do(c.http, req, dest); err != nil {
		return fmt.Errorf("rpc %s: %w", fn, err)
	}
	return nil
}

func (c *Client) tableURL(table, columns string, filters []backend.Eq) string {
	q := url.Values{}
	if columns == "" {
		columns = "*"
	}
	q.Set("select", columns)
	for _, f := range filters {
		q.Add(f.Column, "eq."+f.Value)
	}
	return c.baseURL + "/" + url.PathEscape(table) + "?" + q.Encode()
}

func (c *Client) newRequest(ctx context.Context, method, u string, body any) (*http.Request, error) {
	var bearer string
	if c.token != nil {
		bearer = c.token()
	}
	return backend.NewRequest(ctx, method, u, c.apiKey, bearer, body)
}
