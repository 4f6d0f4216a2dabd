package timeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"asset-aggregator/conf"
	"asset-aggregator/model"
	"asset-aggregator/tool"
)

var (
	ErrInvalidFilter = errors.New("invalid timeline filter")
	ErrExhausted     = errors.New("timeline page retries exhausted")
)

// PageFetcher backend of a loader, in-process or remote
type PageFetcher interface {
	FetchPage(ctx context.Context, q model.PageQuery) (*model.TimelinePage, error)
}

// State loader lifecycle state
type State string

const (
	StateIdle           State = "idle"
	StateLoadingInitial State = "loadingInitial"
	StateLoadingMore    State = "loadingMore"
	StateReady          State = "ready"
	StateError          State = "error"
)

// Config loader pacing
type Config struct {
	PageSize    int
	MinInterval time.Duration // Minimum spacing between LoadMore/Refresh starts
	MaxRetries  int
	RetryStep   time.Duration // Retry n waits n*RetryStep
}

// DefaultConfig 20 per page, 2s throttle, 10 retries stepping 1s
func DefaultConfig() Config {
	return Config{
		PageSize:    model.DefaultPageSize,
		MinInterval: 2 * time.Second,
		MaxRetries:  10,
		RetryStep:   time.Second,
	}
}

// ConfigFrom loader config from the service configuration
func ConfigFrom(c conf.TimelineConfig) Config {
	cfg := DefaultConfig()
	if c.PageSize > 0 {
		cfg.PageSize = c.PageSize
	}
	if c.MinInterval > 0 {
		cfg.MinInterval = c.MinInterval
	}
	if c.MaxRetries > 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	if c.RetryStep > 0 {
		cfg.RetryStep = c.RetryStep
	}
	return cfg
}

// Snapshot immutable view of a loader
type Snapshot struct {
	State   State               `json:"state"`
	Items   []model.AssetRecord `json:"items"`
	Filters model.FilterState   `json:"filters"`
	Stats   Stats               `json:"stats"`
	HasMore bool                `json:"hasMore"`
	Loading bool                `json:"loading"`
	Error   string              `json:"error,omitempty"`
	Warning string              `json:"warning,omitempty"`
	Version uint64              `json:"version"`
}

// Option loader option
type Option func(*Loader)

// WithOnChange fn receives a snapshot after every state change. Calls happen on one
// goroutine, outside the loader lock, in increasing Version order.
func WithOnChange(fn func(Snapshot)) Option {
	return func(l *Loader) { l.onChange = fn }
}

// WithFilters initial filters
func WithFilters(f model.FilterState) Option {
	return func(l *Loader) { l.filters = f }
}

// WithClock injects the throttle clock
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithSleep injects the retry delay
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loader) { l.sleep = sleep }
}

// Loader incremental timeline for one session
type Loader struct {
	fetcher PageFetcher
	cfg     Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	gen         uint64
	cancelFetch context.CancelFunc
	inFlight    bool
	lastStart   time.Time

	state   State
	raw     []model.AssetRecord
	seen    map[string]struct{}
	visible []model.AssetRecord
	filters model.FilterState
	total   int64
	hasMore bool
	err     error
	warning string

	version uint64
	pending []Snapshot
	notify  chan struct{}

	onChange func(Snapshot)
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewLoader idle loader; the first LoadMore fetches the initial page
func NewLoader(fetcher PageFetcher, cfg Config, opts ...Option) *Loader {
	if cfg.PageSize <= 0 {
		cfg.PageSize = model.DefaultPageSize
	}
	if cfg.PageSize > model.MaxPageSize {
		cfg.PageSize = model.MaxPageSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		fetcher: fetcher,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		state:   StateIdle,
		seen:    map[string]struct{}{},
		filters: model.DefaultFilterState(),
		hasMore: true,
		now:     time.Now,
		sleep:   sleepCtx,
		notify:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.onChange != nil {
		l.wg.Add(1)
		go l.dispatch()
	}
	return l
}

// LoadMore fetches the next page. Returns false when the call was dropped:
// a load is in flight, nothing is left, or the throttle window has not passed.
func (l *Loader) LoadMore() bool {
	l.mu.Lock()
	if l.closed || l.inFlight || !l.hasMore || l.throttledLocked() {
		l.mu.Unlock()
		return false
	}
	l.startLocked(int64(len(l.raw)), false)
	l.notifyAndUnlock()
	return true
}

// Refresh refetches from offset 0, replacing the loaded items on success.
// The in-flight load is cancelled; stale items stay visible meanwhile.
func (l *Loader) Refresh() bool {
	l.mu.Lock()
	if l.closed || l.throttledLocked() {
		l.mu.Unlock()
		return false
	}
	l.startLocked(0, true)
	l.notifyAndUnlock()
	return true
}

// OnSentinelVisible infinite scroll trigger
func (l *Loader) OnSentinelVisible() bool {
	return l.LoadMore()
}

// UpdateFilters applies a patch. Backend filter changes reset the list and refetch
// immediately; client filter changes only recompute the visible items.
func (l *Loader) UpdateFilters(p model.FilterPatch) error {
	if err := validatePatch(p); err != nil {
		return err
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	next, backendChanged := l.filters.Apply(lowerSort(p))
	l.setFiltersLocked(next, backendChanged)
	l.notifyAndUnlock()
	return nil
}

// ClearFilters restores the default filters
func (l *Loader) ClearFilters() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	next := model.DefaultFilterState()
	l.setFiltersLocked(next, !l.filters.SameBackend(next))
	l.notifyAndUnlock()
}

// Snapshot current view
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Close cancels any in-flight load and waits for it to finish
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
	l.wg.Wait()
}

func (l *Loader) throttledLocked() bool {
	if l.lastStart.IsZero() || l.cfg.MinInterval <= 0 {
		return false
	}
	return l.now().Sub(l.lastStart) < l.cfg.MinInterval
}

func (l *Loader) setFiltersLocked(next model.FilterState, backendChanged bool) {
	l.filters = next
	if !backendChanged {
		l.visible = ApplyClientFilters(l.raw, l.filters)
		return
	}
	l.raw = nil
	l.visible = nil
	l.seen = map[string]struct{}{}
	l.total = 0
	l.hasMore = true
	l.err = nil
	l.warning = ""
	l.startLocked(0, true)
}

// startLocked supersedes any in-flight fetch with a new generation
func (l *Loader) startLocked(offset int64, replace bool) {
	if l.cancelFetch != nil {
		l.cancelFetch()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(l.ctx)
	l.cancelFetch = cancel
	l.inFlight = true
	l.lastStart = l.now()
	if replace || len(l.raw) == 0 {
		l.state = StateLoadingInitial
	} else {
		l.state = StateLoadingMore
	}

	q := l.filters.Query(offset, l.cfg.PageSize)
	l.wg.Add(1)
	go l.run(ctx, cancel, gen, q, replace)
}

func (l *Loader) run(ctx context.Context, cancel context.CancelFunc, gen uint64, q model.PageQuery, replace bool) {
	defer l.wg.Done()
	defer cancel()

	page, err := l.fetchWithRetry(ctx, q)

	l.mu.Lock()
	if l.closed || gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.inFlight = false
	l.cancelFetch = nil
	if err != nil {
		if len(l.raw) == 0 {
			l.state = StateError
			l.err = err
		} else {
			l.state = StateReady
			l.warning = err.Error()
		}
		log.Warnf("⚠️  Timeline page offset=%d failed: %v", q.Offset, err)
	} else {
		l.applyPageLocked(page, replace)
	}
	l.notifyAndUnlock()
}

func (l *Loader) applyPageLocked(page *model.TimelinePage, replace bool) {
	if replace {
		l.raw = nil
		l.seen = map[string]struct{}{}
	}
	for _, item := range page.Items {
		if _, dup := l.seen[item.ID]; dup {
			continue
		}
		l.seen[item.ID] = struct{}{}
		l.raw = append(l.raw, item)
	}
	l.total = page.Total
	l.hasMore = page.HasMore && len(page.Items) > 0
	l.err = nil
	l.warning = ""
	l.visible = ApplyClientFilters(l.raw, l.filters)
	l.state = StateReady
}

func (l *Loader) fetchWithRetry(ctx context.Context, q model.PageQuery) (*model.TimelinePage, error) {
	var lastErr error
	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := l.sleep(ctx, l.cfg.RetryStep*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
		page, err := l.fetcher.FetchPage(ctx, q)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
		log.Debugf("Timeline page offset=%d attempt %d failed: %v", q.Offset, attempt+1, err)
	}
	return nil, fmt.Errorf("%w: %w", ErrExhausted, lastErr)
}

// notifyAndUnlock stamps a new version and queues its snapshot for dispatch
func (l *Loader) notifyAndUnlock() {
	l.version++
	if l.onChange != nil {
		l.pending = append(l.pending, l.snapshotLocked())
		select {
		case l.notify <- struct{}{}:
		default:
		}
	}
	l.mu.Unlock()
}

// dispatch delivers queued snapshots one at a time, oldest first
func (l *Loader) dispatch() {
	defer l.wg.Done()
	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.notify:
		}
		for {
			l.mu.Lock()
			batch := l.pending
			l.pending = nil
			l.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, snap := range batch {
				if l.ctx.Err() != nil {
					return
				}
				l.onChange(snap)
			}
		}
	}
}

func (l *Loader) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:   l.state,
		Items:   append([]model.AssetRecord(nil), l.visible...),
		Filters: l.filters,
		Stats:   computeStats(l.raw, l.visible, l.total),
		HasMore: l.hasMore,
		Loading: l.inFlight,
		Warning: l.warning,
		Version: l.version,
	}
	if l.err != nil {
		snap.Error = l.err.Error()
	}
	return snap
}

func lowerSort(p model.FilterPatch) model.FilterPatch {
	if p.SortKey != nil {
		k := strings.ToLower(*p.SortKey)
		p.SortKey = &k
	}
	if p.SortOrder != nil {
		o := strings.ToLower(*p.SortOrder)
		p.SortOrder = &o
	}
	return p
}

func validatePatch(p model.FilterPatch) error {
	if p.SortKey != nil && strings.ToLower(*p.SortKey) != model.SortKeyMinted {
		return fmt.Errorf("%w: sort key %q", ErrInvalidFilter, *p.SortKey)
	}
	if p.SortOrder != nil {
		switch strings.ToLower(*p.SortOrder) {
		case model.SortOrderAsc, model.SortOrderDesc:
		default:
			return fmt.Errorf("%w: sort order %q", ErrInvalidFilter, *p.SortOrder)
		}
	}
	return nil
}

// retryable client errors other than 429 will not change on retry
func retryable(err error) bool {
	code := tool.StatusCode(err)
	if code >= http.StatusBadRequest && code < http.StatusInternalServerError {
		return code == http.StatusTooManyRequests
	}
	return !errors.Is(err, ErrInvalidFilter)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
