package enrich_service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"asset-aggregator/conf"
	"asset-aggregator/explorer"
	"asset-aggregator/model"
	"asset-aggregator/tool"
)

var (
	ErrEmptyHashes   = errors.New("hashes must be a non-empty list")
	ErrTooManyHashes = errors.New("too many hashes in one batch")
)

// TxnSource raw transaction documents by hash
type TxnSource interface {
	FetchTxn(ctx context.Context, hash string) ([]byte, error)
}

// ProgressFunc called from worker goroutines after each hash completes
type ProgressFunc func(done, total int)

// Enricher resolves timestamp and sender for a batch of transaction hashes
// with a fixed-size worker pool. Every input hash always gets an entry.
type Enricher struct {
	source       TxnSource
	workers      int
	maxAttempts  int
	baseDelay    time.Duration
	maxJitter    time.Duration
	maxHashes    int
	batchTimeout time.Duration

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(max time.Duration) time.Duration
}

type Option func(*Enricher)

func WithWorkers(n int) Option {
	return func(e *Enricher) { e.workers = n }
}

func WithMaxAttempts(n int) Option {
	return func(e *Enricher) { e.maxAttempts = n }
}

func WithBackoff(base, maxJitter time.Duration) Option {
	return func(e *Enricher) {
		e.baseDelay = base
		e.maxJitter = maxJitter
	}
}

func WithMaxHashes(n int) Option {
	return func(e *Enricher) { e.maxHashes = n }
}

// WithBatchTimeout ceiling for a whole batch, hashes still pending then soft-fail
func WithBatchTimeout(d time.Duration) Option {
	return func(e *Enricher) { e.batchTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(e *Enricher) { e.now = now }
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Enricher) { e.sleep = sleep }
}

func WithJitter(jitter func(max time.Duration) time.Duration) Option {
	return func(e *Enricher) { e.jitter = jitter }
}

func NewEnricher(source TxnSource, opts ...Option) *Enricher {
	e := &Enricher{
		source:       source,
		workers:      4,
		maxAttempts:  5,
		baseDelay:    300 * time.Millisecond,
		maxJitter:    150 * time.Millisecond,
		maxHashes:    100,
		batchTimeout: 45 * time.Second,
		now:          time.Now,
		sleep:        sleepCtx,
		jitter:       randomJitter,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	if e.maxAttempts < 1 {
		e.maxAttempts = 1
	}
	return e
}

// NewEnricherFromConfig enricher tuned by the enricher config section
func NewEnricherFromConfig(source TxnSource, cfg conf.EnricherConfig) *Enricher {
	return NewEnricher(source,
		WithWorkers(cfg.Workers),
		WithMaxAttempts(cfg.MaxAttempts),
		WithBackoff(cfg.BaseDelay, cfg.MaxJitter),
		WithMaxHashes(cfg.MaxHashes),
		WithBatchTimeout(cfg.BatchTimeout),
	)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

// Enrich see EnrichWithProgress
func (e *Enricher) Enrich(ctx context.Context, hashes []string) (map[string]model.TxnEnrichment, error) {
	return e.EnrichWithProgress(ctx, hashes, nil)
}

// EnrichWithProgress returns one entry per distinct hash. Only caller input errors are returned;
// upstream failures turn into soft-fail entries (timestamp now, no sender).
func (e *Enricher) EnrichWithProgress(ctx context.Context, hashes []string, onProgress ProgressFunc) (map[string]model.TxnEnrichment, error) {
	unique := Dedupe(hashes)
	if len(unique) == 0 {
		return nil, ErrEmptyHashes
	}
	if e.maxHashes > 0 && len(unique) > e.maxHashes {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyHashes, len(unique), e.maxHashes)
	}

	if e.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.batchTimeout)
		defer cancel()
	}

	jobs := make(chan int, len(unique))
	for i := range unique {
		jobs <- i
	}
	close(jobs)

	workers := e.workers
	if workers > len(unique) {
		workers = len(unique)
	}

	// each slot is written by exactly one worker
	results := make([]model.TxnEnrichment, len(unique))
	var (
		wg       sync.WaitGroup
		done     atomic.Int64
		failures atomic.Int64
	)
	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry, ok := e.enrichOne(ctx, unique[i])
				results[i] = entry
				if !ok {
					failures.Add(1)
				}
				n := done.Add(1)
				if onProgress != nil {
					onProgress(int(n), len(unique))
				}
			}
		}()
	}
	wg.Wait()

	out := make(map[string]model.TxnEnrichment, len(unique))
	for i, h := range unique {
		out[h] = results[i]
	}
	log.Infof("Enriched %d hashes with %d workers in %s (%d soft-failed)",
		len(unique), workers, time.Since(start).Round(time.Millisecond), failures.Load())
	return out, nil
}

// enrichOne ok is false for soft-fail entries
func (e *Enricher) enrichOne(ctx context.Context, hash string) (model.TxnEnrichment, bool) {
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			log.Debugf("txn %s: batch deadline reached after %d attempts", hash, attempt)
			break
		}

		body, err := e.source.FetchTxn(ctx, hash)
		if err == nil {
			return explorer.Extract(body, e.now()), true
		}

		if !tool.IsRetryable(err) {
			log.Debugf("txn %s: permanent failure: %v", hash, err)
			break
		}
		if attempt == e.maxAttempts-1 {
			log.Warnf("⚠️  txn %s: giving up after %d attempts: %v", hash, e.maxAttempts, err)
			break
		}

		delay := e.baseDelay*time.Duration(1<<attempt) + e.jitter(e.maxJitter)
		if err := e.sleep(ctx, delay); err != nil {
			break
		}
	}
	return model.SoftFail(e.now()), false
}

// Dedupe trims hashes and drops empties and repeats, keeping first-seen order
func Dedupe(hashes []string) []string {
	seen := make(map[string]struct{}, len(hashes))
	out := make([]string, 0, len(hashes))
	for _, h := range hashes {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
