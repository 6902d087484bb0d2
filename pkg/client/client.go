// Package client is a small SDK for the domain progress API. It keeps a
// local copy of the caller's progress and applies topic toggles
// optimistically: the local state flips immediately, the server is updated in
// the background of the call, and on failure the local state rolls back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"onestack/internal/catalog"
	"onestack/internal/progress"
)

// MilestoneFunc is invoked when an update crosses a completion milestone.
// Only the first milestone crossed by a single toggle fires, and only after
// the server has confirmed the update.
type MilestoneFunc func(domainID string, milestone int)

// Client tracks per-domain progress locally and synchronizes it with the
// server. Safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	catalog    *catalog.Catalog

	onMilestone MilestoneFunc

	mu      sync.Mutex
	domains map[string]*progress.DomainProgress
	total   int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMilestoneFunc registers a callback for milestone crossings.
func WithMilestoneFunc(fn MilestoneFunc) Option {
	return func(c *Client) { c.onMilestone = fn }
}

// WithCatalog overrides the built-in domain catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(c *Client) { c.catalog = cat }
}

// New creates a Client for the given API base URL and bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		catalog:    catalog.Default(),
		domains:    make(map[string]*progress.DomainProgress),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the server's current progress and replaces the local state.
// Stored topic lists are reconciled against the catalog so the local view
// always shows the current canonical topics.
func (c *Client) Load(ctx context.Context) error {
	var body struct {
		Success              bool                      `json:"success"`
		DomainsProgress      []progress.DomainProgress `json:"domainsProgress"`
		TotalTopicsCompleted int                       `json:"totalTopicsCompleted"`
	}
	if err := c.get(ctx, "/domains/progress", &body); err != nil {
		return err
	}

	domains := make(map[string]*progress.DomainProgress, len(body.DomainsProgress))
	for i := range body.DomainsProgress {
		dp := body.DomainsProgress[i]
		if def, ok := c.catalog.Get(dp.DomainID); ok {
			dp.Topics = progress.ReconcileTopics(def.Topics, dp.Topics)
			stats := progress.AggregateDomain(dp.Topics)
			dp.TotalTopics = stats.TotalTopics
			dp.CompletedTopics = stats.CompletedTopics
		}
		domains[dp.DomainID] = &dp
	}

	c.mu.Lock()
	c.domains = domains
	c.total = body.TotalTopicsCompleted
	c.mu.Unlock()
	return nil
}

// Domain returns a snapshot of the local state for one domain. Domains the
// user never touched are synthesized from the catalog with every topic
// incomplete; unknown domain IDs return nil.
func (c *Client) Domain(domainID string) *progress.DomainProgress {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dp, ok := c.domains[domainID]; ok {
		return cloneDomain(dp)
	}
	return c.freshDomainLocked(domainID)
}

// TotalTopicsCompleted returns the locally known total across all domains.
func (c *Client) TotalTopicsCompleted() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Percentage returns the local completion percent for one domain, 0 for
// unknown domains.
func (c *Client) Percentage(domainID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dp, ok := c.domains[domainID]
	if !ok {
		return 0
	}
	return progress.Percentage(dp.CompletedTopics, dp.TotalTopics)
}

// ToggleTopic flips one topic's completion state. The local state updates
// immediately; if the server rejects the change the local state is restored
// and the error returned. On success the server's response replaces the
// optimistic guess, so completedAt stamps and totals are always the server's.
func (c *Client) ToggleTopic(ctx context.Context, domainID string, topicID int) (*progress.DomainProgress, error) {
	c.mu.Lock()

	current, ok := c.domains[domainID]
	if !ok {
		current = c.freshDomainLocked(domainID)
		if current == nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("unknown domain %q", domainID)
		}
		c.domains[domainID] = current
	}

	rollback := cloneDomain(current)
	prevTotal := c.total
	prevPct := progress.Percentage(current.CompletedTopics, current.TotalTopics)

	flipped := false
	for i := range current.Topics {
		if current.Topics[i].ID == topicID {
			current.Topics[i].Completed = !current.Topics[i].Completed
			if current.Topics[i].Completed {
				current.CompletedTopics++
				c.total++
			} else {
				current.CompletedTopics--
				c.total--
				current.Topics[i].CompletedAt = nil
			}
			flipped = true
			break
		}
	}
	if !flipped {
		c.mu.Unlock()
		return nil, fmt.Errorf("unknown topic %d in domain %q", topicID, domainID)
	}

	payload := updatePayload(current)
	c.mu.Unlock()

	var resp struct {
		Success              bool                    `json:"success"`
		DomainProgress       progress.DomainProgress `json:"domainProgress"`
		TotalTopicsCompleted int                     `json:"totalTopicsCompleted"`
	}
	err := c.post(ctx, "/domains/progress", payload, &resp)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Restore the pre-toggle state; no milestone fires for a change
		// that never landed.
		c.domains[domainID] = rollback
		c.total = prevTotal
		return nil, err
	}

	confirmed := resp.DomainProgress
	c.domains[domainID] = &confirmed
	c.total = resp.TotalTopicsCompleted

	newPct := progress.Percentage(confirmed.CompletedTopics, confirmed.TotalTopics)
	if c.onMilestone != nil {
		if m, crossed := progress.FirstMilestoneCrossed(prevPct, newPct); crossed {
			c.onMilestone(domainID, m)
		}
	}
	return cloneDomain(&confirmed), nil
}

// freshDomainLocked builds an all-incomplete record from the catalog.
// Caller holds c.mu.
func (c *Client) freshDomainLocked(domainID string) *progress.DomainProgress {
	def, ok := c.catalog.Get(domainID)
	if !ok {
		return nil
	}
	return &progress.DomainProgress{
		DomainID:    domainID,
		DomainName:  def.Name,
		TotalTopics: len(def.Topics),
		Topics:      progress.ReconcileTopics(def.Topics, nil),
	}
}

func cloneDomain(dp *progress.DomainProgress) *progress.DomainProgress {
	out := *dp
	out.Topics = make([]progress.Topic, len(dp.Topics))
	copy(out.Topics, dp.Topics)
	for i, t := range out.Topics {
		if t.CompletedAt != nil {
			stamp := *t.CompletedAt
			out.Topics[i].CompletedAt = &stamp
		}
	}
	return &out
}

type topicPayload struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

func updatePayload(dp *progress.DomainProgress) map[string]any {
	topics := make([]topicPayload, len(dp.Topics))
	for i, t := range dp.Topics {
		topics[i] = topicPayload{ID: t.ID, Name: t.Name, Completed: t.Completed}
	}
	return map[string]any{
		"domainId":   dp.DomainID,
		"domainName": dp.DomainName,
		"topics":     topics,
	}
}

func (c *Client) get(ctx context.Context, path string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.send(req, into)
}

func (c *Client) post(ctx context.Context, path string, body any, into any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, into)
}

func (c *Client) send(req *http.Request, into any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if into == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(into)
}
