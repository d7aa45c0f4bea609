package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/model"
)

// stubSource counts fetches and can be switched to fail.
type stubSource struct {
	mu      sync.Mutex
	records map[string][]model.Record
	fetches map[string]int
	err     error
}

func newStubSource() *stubSource {
	return &stubSource{
		records: make(map[string][]model.Record),
		fetches: make(map[string]int),
	}
}

func (s *stubSource) Fetch(ctx context.Context, table string) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[table]++
	if s.err != nil {
		return nil, s.err
	}
	return s.records[table], nil
}

func (s *stubSource) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *stubSource) fetchCount(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[table]
}

func (s *stubSource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func TestCacheFreshness(t *testing.T) {
	source := newStubSource()
	source.records["payments"] = []model.Record{{"concept": "Tuition"}}

	c := New(source, 5*time.Minute, zap.NewNop())

	now := time.Now()
	c.now = func() time.Time { return now }

	// First access fetches
	records := c.Get(context.Background(), "payments")
	require.Len(t, records, 1)
	assert.Equal(t, 1, source.fetchCount("payments"))

	// Within the freshness window no I/O happens
	again := c.Get(context.Background(), "payments")
	assert.Equal(t, records[0], again[0])
	assert.Equal(t, 1, source.fetchCount("payments"))

	// At the window boundary the source is invoked again
	now = now.Add(5 * time.Minute)
	c.Get(context.Background(), "payments")
	assert.Equal(t, 2, source.fetchCount("payments"))
}

func TestCacheStalenessIsPerTable(t *testing.T) {
	source := newStubSource()
	source.records["payments"] = []model.Record{{"concept": "Tuition"}}
	source.records["events"] = []model.Record{{"title": "Open day"}}

	c := New(source, 5*time.Minute, zap.NewNop())
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Get(context.Background(), "payments")
	now = now.Add(3 * time.Minute)
	c.Get(context.Background(), "events")
	now = now.Add(3 * time.Minute)

	// payments is stale, events is still fresh
	c.Get(context.Background(), "payments")
	c.Get(context.Background(), "events")
	assert.Equal(t, 2, source.fetchCount("payments"))
	assert.Equal(t, 1, source.fetchCount("events"))
}

func TestCacheInvalidate(t *testing.T) {
	source := newStubSource()
	source.records["payments"] = []model.Record{{"concept": "Tuition"}}

	c := New(source, time.Hour, zap.NewNop())

	c.Get(context.Background(), "payments")
	c.Get(context.Background(), "payments")
	require.Equal(t, 1, source.fetchCount("payments"))

	t.Run("SingleTable", func(t *testing.T) {
		c.Invalidate("payments")
		c.Get(context.Background(), "payments")
		assert.Equal(t, 2, source.fetchCount("payments"))
	})

	t.Run("All", func(t *testing.T) {
		c.InvalidateAll()
		c.Get(context.Background(), "payments")
		assert.Equal(t, 3, source.fetchCount("payments"))
	})
}

func TestCacheFetchFailure(t *testing.T) {
	source := newStubSource()
	source.setErr(errors.New("boom"))

	c := New(source, time.Minute, zap.NewNop())

	// Failure degrades to an empty sequence, not an error
	records := c.Get(context.Background(), "payments")
	assert.Empty(t, records)
	assert.Equal(t, 1, source.fetchCount("payments"))

	// Nothing was cached; the next access tries the source again
	c.Get(context.Background(), "payments")
	assert.Equal(t, 2, source.fetchCount("payments"))

	// Once the source recovers the result is cached normally
	source.setErr(nil)
	source.mu.Lock()
	source.records["payments"] = []model.Record{{"concept": "Tuition"}}
	source.mu.Unlock()

	records = c.Get(context.Background(), "payments")
	require.Len(t, records, 1)
	c.Get(context.Background(), "payments")
	assert.Equal(t, 3, source.fetchCount("payments"))
}

func TestCacheGetAsync(t *testing.T) {
	source := newStubSource()
	source.records["events"] = []model.Record{{"title": "Open day"}}

	c := New(source, time.Minute, zap.NewNop())
	defer c.Close()

	select {
	case records := <-c.GetAsync(context.Background(), "events"):
		require.Len(t, records, 1)
		assert.Equal(t, "Open day", records[0].Get("title"))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for async fetch")
	}

	// A fresh entry is delivered without another fetch
	<-c.GetAsync(context.Background(), "events")
	assert.Equal(t, 1, source.fetchCount("events"))
}

func TestCacheAge(t *testing.T) {
	source := newStubSource()
	source.records["payments"] = []model.Record{{"concept": "Tuition"}}

	c := New(source, time.Hour, zap.NewNop())
	now := time.Now()
	c.now = func() time.Time { return now }

	_, ok := c.Age("payments")
	assert.False(t, ok)

	c.Get(context.Background(), "payments")
	now = now.Add(90 * time.Second)

	age, ok := c.Age("payments")
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, age)
}

func TestCacheConcurrentReaders(t *testing.T) {
	source := newStubSource()
	source.records["payments"] = []model.Record{{"concept": "Tuition"}}
	source.records["events"] = []model.Record{{"title": "Open day"}}

	c := New(source, time.Hour, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table := "payments"
			if i%2 == 0 {
				table = "events"
			}
			records := c.Get(context.Background(), table)
			assert.NotEmpty(t, records)
		}(i)
	}
	wg.Wait()
}
