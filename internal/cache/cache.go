package cache

import (
	"context"
	"sync"
	"time"

	"github.com/korovkin/limiter"
	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/model"
	"github.com/t77yq/campus-bot/internal/sheets"
)

const (
	// DefaultTTL is the freshness window applied when none is configured.
	DefaultTTL = 5 * time.Minute

	// maxConcurrentFetches bounds how many remote fetches the async path
	// may run at once.
	maxConcurrentFetches = 4
)

// entry is one materialized table snapshot. Entries are immutable once
// stored; a refresh replaces the whole entry, never mutates it.
type entry struct {
	records   []model.Record
	fetchedAt time.Time
}

// Cache is a per-table time-boxed cache over the remote spreadsheet.
// A table served within its freshness window does no I/O. Fetch
// failures degrade to an empty result: callers must treat empty as
// "unavailable", not "confirmed zero rows".
type Cache struct {
	logger  *zap.Logger
	source  sheets.Source
	ttl     time.Duration
	now     func() time.Time
	fetches *limiter.ConcurrencyLimiter

	mu     sync.RWMutex
	tables map[string]*entry
}

// New creates a cache over the given source.
func New(source sheets.Source, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache{
		logger:  logger.Named("cache"),
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		fetches: limiter.NewConcurrencyLimiter(maxConcurrentFetches),
		tables:  make(map[string]*entry),
	}
}

// Get returns the records of a table, serving the cached snapshot when
// it is still fresh and refreshing from the source otherwise. On fetch
// failure the previous entry is kept and an empty sequence is returned.
func (c *Cache) Get(ctx context.Context, table string) []model.Record {
	if records, ok := c.lookup(table); ok {
		return records
	}
	return c.refresh(ctx, table)
}

// GetAsync behaves like Get but runs the potentially slow remote fetch
// on a bounded background worker, so a caller driving time-sensitive
// work is never stalled by one slow table. The result is delivered on
// the returned channel.
func (c *Cache) GetAsync(ctx context.Context, table string) <-chan []model.Record {
	out := make(chan []model.Record, 1)

	if records, ok := c.lookup(table); ok {
		out <- records
		close(out)
		return out
	}

	go func() {
		c.fetches.Execute(func() {
			out <- c.refresh(ctx, table)
			close(out)
		})
	}()

	return out
}

// Invalidate drops one table's entry, forcing the next Get to refetch
// regardless of freshness.
func (c *Cache) Invalidate(table string) {
	c.mu.Lock()
	delete(c.tables, table)
	c.mu.Unlock()

	c.logger.Info("Invalidated table", zap.String("table", table))
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.tables = make(map[string]*entry)
	c.mu.Unlock()

	c.logger.Info("Invalidated all tables")
}

// Age reports how long ago a table was fetched. The second return is
// false when the table has no entry.
func (c *Cache) Age(table string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.tables[table]
	if !ok {
		return 0, false
	}
	return c.now().Sub(e.fetchedAt), true
}

// Close waits for in-flight background fetches to finish.
func (c *Cache) Close() error {
	return c.fetches.WaitAndClose()
}

// lookup returns the cached records when the entry exists and is fresh.
func (c *Cache) lookup(table string) ([]model.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.tables[table]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.records, true
}

// refresh fetches a table from the source and replaces its entry. The
// entry is replaced as a whole so records and timestamp always come
// from the same fetch.
func (c *Cache) refresh(ctx context.Context, table string) []model.Record {
	records, err := c.source.Fetch(ctx, table)
	if err != nil {
		c.logger.Error("Failed to fetch table",
			zap.String("table", table),
			zap.Error(err))
		return nil
	}

	c.mu.Lock()
	c.tables[table] = &entry{records: records, fetchedAt: c.now()}
	c.mu.Unlock()

	return records
}
