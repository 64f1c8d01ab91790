package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresvm/email-autosend/model"
	"github.com/andresvm/email-autosend/service/dto"
	"go.uber.org/zap"
)

// Status is the sync client's fetch state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
	//StatusOffline means cached data is being served because the network is
	//unreachable
	StatusOffline
)

// SyncClient maintains a paginated view over the server's entry collection,
// persists the last successful page and falls back to it when the network is
// unavailable.
type SyncClient struct {
	fetchClient *http.Client
	//bulk sends have no client-side timeout; the dispatch run takes as long
	//as it takes
	sendClient *http.Client
	baseURL    string
	limit      int
	cache      Cache
	sending    *SendingState

	mu          sync.Mutex
	status      Status
	loadingMore bool
	fetching    bool
	offline     bool
	errMsg      string
	page        int
	total       int
	hasMore     bool
	items       []dto.Entry
}

func NewSyncClient(baseURL string, limit int, cache Cache) *SyncClient {
	return &SyncClient{
		fetchClient: &http.Client{Timeout: 10 * time.Second},
		sendClient:  &http.Client{},
		baseURL:     strings.TrimRight(baseURL, "/"),
		limit:       limit,
		cache:       cache,
		sending:     NewSendingState(),
		page:        1,
	}
}

// Start performs the cold-start sequence: surface the last snapshot
// immediately if one exists, then refresh from the network. A successful
// fetch overwrites the stale snapshot.
func (c *SyncClient) Start() {
	snap, ok, err := c.cache.LoadSnapshot()
	if err != nil {
		zap.L().Warn("snapshot read failed", zap.Error(err))
	} else if ok && len(snap.Items) > 0 {
		c.mu.Lock()
		c.apply(snap, false)
		c.mu.Unlock()
	}

	c.fetchPage(1, c.limit, false)
}

// Refetch discards the in-memory view and reloads the first page.
func (c *SyncClient) Refetch() {
	c.mu.Lock()
	c.items = nil
	c.page = 1
	c.total = 0
	c.hasMore = false
	c.errMsg = ""
	c.status = StatusLoading
	c.mu.Unlock()

	c.fetchPage(1, c.limit, false)
}

// LoadMore appends the next page. No-op when there is nothing more to load or
// a fetch is already in flight. The current page advances only after the
// fetch succeeds.
func (c *SyncClient) LoadMore() {
	c.mu.Lock()
	if !c.hasMore || c.fetching {
		c.mu.Unlock()
		return
	}
	next := c.page + 1
	c.mu.Unlock()

	c.fetchPage(next, c.limit, true)
}

func (c *SyncClient) fetchPage(page, limit int, appendItems bool) {
	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return
	}
	c.fetching = true
	if appendItems {
		c.loadingMore = true
	} else if c.status != StatusReady {
		c.status = StatusLoading
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.fetching = false
		c.loadingMore = false
		c.mu.Unlock()
	}()

	url := fmt.Sprintf("%s/api/data?page=%d&limit=%d", c.baseURL, page, limit)
	resp, err := c.fetchClient.Get(url)
	if err != nil {
		c.fallback(err, appendItems)
		return
	}
	defer resp.Body.Close()

	//explicit no-content statuses are a valid empty page, not an error
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		c.mu.Lock()
		c.apply(dto.Page{Success: true, Page: page, Limit: limit, Items: []dto.Entry{}}, appendItems)
		c.mu.Unlock()
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.fallback(fmt.Errorf("server returned %s", resp.Status), appendItems)
		return
	}

	var result dto.Page
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.fallback(fmt.Errorf("malformed server response: %w", err), appendItems)
		return
	}

	c.mu.Lock()
	c.apply(result, appendItems)
	//the snapshot holds the full merged view, not just the last page
	merged := dto.Page{
		Success: true,
		Page:    result.Page,
		Limit:   result.Limit,
		Total:   result.Total,
		HasMore: result.HasMore,
		Items:   append([]dto.Entry{}, c.items...),
	}
	c.mu.Unlock()

	if err := c.cache.SaveSnapshot(merged); err != nil {
		zap.L().Warn("snapshot write failed", zap.Error(err))
	}
}

// apply merges a fetched page into the view. Callers hold c.mu.
func (c *SyncClient) apply(page dto.Page, appendItems bool) {
	if appendItems {
		c.items = append(c.items, page.Items...)
	} else {
		c.items = append([]dto.Entry{}, page.Items...)
	}
	c.page = page.Page
	c.total = page.Total
	c.hasMore = page.HasMore
	c.status = StatusReady
	c.offline = false
	c.errMsg = ""
}

// fallback handles a failed fetch. Network-shaped failures fall back to the
// snapshot (or an empty page) and never surface an error; anything else
// surfaces an error only when no snapshot exists.
func (c *SyncClient) fallback(cause error, appendItems bool) {
	network := isNetworkErr(cause)
	zap.L().Warn("fetch failed", zap.Error(cause), zap.Bool("network", network))

	if appendItems {
		//a failed load-more keeps the items already on screen
		c.mu.Lock()
		if network {
			c.offline = true
			c.status = StatusOffline
		}
		c.mu.Unlock()
		return
	}

	snap, ok, err := c.cache.LoadSnapshot()
	if err != nil {
		//storage failures count as "no cache available"
		zap.L().Warn("snapshot read failed", zap.Error(err))
		ok = false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ok && len(snap.Items) > 0 {
		c.apply(snap, false)
		if network {
			c.offline = true
			c.status = StatusOffline
		}
		return
	}

	if network {
		c.apply(dto.Page{Success: true, Page: 1, Limit: c.limit, Items: []dto.Entry{}}, false)
		c.offline = true
		c.status = StatusOffline
		return
	}

	c.status = StatusError
	c.errMsg = cause.Error()
}

// Recipients flattens the current items into an ordered recipient list.
// Within one entry the mapping is ordered by name so repeated calls produce
// the same sequence.
func (c *SyncClient) Recipients() []model.Recipient {
	c.mu.Lock()
	defer c.mu.Unlock()

	recipients := []model.Recipient{}
	for _, item := range c.items {
		names := make([]string, 0, len(item.Data))
		for name := range item.Data {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			recipients = append(recipients, model.Recipient{Name: name, Email: item.Data[name]})
		}
	}
	return recipients
}

// SendAll posts the current recipient set to the bulk endpoint, tracking
// per-recipient sending state, and refetches on completion. Refuses to run
// with zero recipients or while another bulk run is in flight.
func (c *SyncClient) SendAll() (dto.BulkResponse, error) {
	recipients := c.Recipients()
	if len(recipients) == 0 {
		return dto.BulkResponse{}, errors.New("no recipients available")
	}
	if c.sending.IsBulkInFlight() {
		return dto.BulkResponse{}, errors.New("bulk send already in progress")
	}

	users := make([]dto.User, 0, len(recipients))
	emails := make([]string, 0, len(recipients))
	for _, r := range recipients {
		users = append(users, dto.User{Name: r.Name, Email: r.Email})
		emails = append(emails, r.Email)
	}

	c.sending.BeginBulk(emails)
	defer c.sending.EndBulk()

	body, err := json.Marshal(dto.BulkRequest{Users: users})
	if err != nil {
		return dto.BulkResponse{}, err
	}

	resp, err := c.sendClient.Post(c.baseURL+"/api/send-bulk-emails", "application/json", bytes.NewReader(body))
	if err != nil {
		return dto.BulkResponse{}, err
	}
	defer resp.Body.Close()

	var result dto.BulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return dto.BulkResponse{}, fmt.Errorf("malformed server response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("bulk send rejected: %s", resp.Status)
	}

	for _, u := range result.Results.Success {
		c.sending.Settle(u.Email, true)
	}
	for _, f := range result.Results.Failed {
		c.sending.Settle(f.Email, false)
	}

	c.Refetch()

	return result, nil
}

// Sending exposes the per-recipient sending state for UI observers.
func (c *SyncClient) Sending() *SendingState {
	return c.sending
}

func (c *SyncClient) Items() []dto.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]dto.Entry{}, c.items...)
}

func (c *SyncClient) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *SyncClient) Offline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offline
}

func (c *SyncClient) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *SyncClient) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

func (c *SyncClient) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *SyncClient) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *SyncClient) LoadingMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadingMore
}
