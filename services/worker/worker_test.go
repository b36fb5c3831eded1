package worker

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jaekwon721/nikewatcher/internal/crawler"
	apperrors "jaekwon721/nikewatcher/pkg/errors"
	"jaekwon721/nikewatcher/services/publisher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockHarvester implements the Harvester interface for testing
type MockHarvester struct {
	mu        sync.Mutex
	results   map[string]crawler.Result
	inFlight  atomic.Int64
	maxActive atomic.Int64
}

var _ Harvester = (*MockHarvester)(nil)

func NewMockHarvester() *MockHarvester {
	return &MockHarvester{results: make(map[string]crawler.Result)}
}

func (m *MockHarvester) Run(ctx context.Context, cat crawler.Category) crawler.Result {
	active := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		max := m.maxActive.Load()
		if active <= max || m.maxActive.CompareAndSwap(max, active) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()
	if res, ok := m.results[cat.EntryURL]; ok {
		res.Category = cat
		return res
	}
	return crawler.Result{Category: cat}
}

// MockStore implements the Store interface for testing
type MockStore struct {
	mu        sync.Mutex
	snapshots [][]crawler.ProductRecord
	err       error
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) SaveSnapshot(ctx context.Context, records []crawler.ProductRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.snapshots = append(m.snapshots, records)
	return nil
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

var _ publisher.Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func categories(urls ...string) []crawler.Category {
	cats := make([]crawler.Category, 0, len(urls))
	for _, u := range urls {
		cats = append(cats, crawler.NewCategory(u))
	}
	return cats
}

func TestWorkerAggregatesSuccessfulCategories(t *testing.T) {
	harvester := NewMockHarvester()
	harvester.results["https://x.test/in/w/mens-shoes-a1"] = crawler.Result{
		Records: []crawler.ProductRecord{{Code: "AA0001-100"}, {Code: "BB0002-100"}},
	}
	harvester.results["https://x.test/in/w/womens-shoes-b2"] = crawler.Result{
		Records: []crawler.ProductRecord{{Code: "CC0003-100"}},
	}

	store := &MockStore{}
	pub := &MockPublisher{}

	w := NewWorker(context.Background(),
		categories("https://x.test/in/w/mens-shoes-a1", "https://x.test/in/w/womens-shoes-b2"),
		harvester, store, pub, 4, 0)

	require.NoError(t, w.Start())

	require.Len(t, store.snapshots, 1)
	assert.Len(t, store.snapshots[0], 3)

	require.Len(t, pub.messages, 1)
	var summary RunSummary
	require.NoError(t, json.Unmarshal(pub.messages[0], &summary))
	assert.Equal(t, 2, summary.Categories)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 3, summary.Products)
}

func TestWorkerIsolatesCategoryFailures(t *testing.T) {
	harvester := NewMockHarvester()
	harvester.results["https://x.test/in/w/mens-shoes-a1"] = crawler.Result{
		Records: []crawler.ProductRecord{{Code: "AA0001-100"}},
	}
	harvester.results["https://x.test/in/w/kids-shoes-c3"] = crawler.Result{
		Err: apperrors.NewParsing("kids shoes", "deeplink meta tag missing", nil),
	}

	store := &MockStore{}
	w := NewWorker(context.Background(),
		categories("https://x.test/in/w/mens-shoes-a1", "https://x.test/in/w/kids-shoes-c3"),
		harvester, store, nil, 4, 0)

	require.NoError(t, w.Start())

	require.Len(t, store.snapshots, 1)
	require.Len(t, store.snapshots[0], 1)
	assert.Equal(t, "AA0001-100", store.snapshots[0][0].Code)
}

func TestWorkerSkipsPersistenceOnEmptySnapshot(t *testing.T) {
	harvester := NewMockHarvester()
	harvester.results["https://x.test/in/w/mens-shoes-a1"] = crawler.Result{
		Err: apperrors.NewTransport("mens shoes", "fetch failed", nil),
	}

	store := &MockStore{}
	pub := &MockPublisher{}
	w := NewWorker(context.Background(),
		categories("https://x.test/in/w/mens-shoes-a1"),
		harvester, store, pub, 4, 0)

	require.NoError(t, w.Start())
	assert.Empty(t, store.snapshots)
	assert.Empty(t, pub.messages, "no summary is published for an empty run")
}

func TestWorkerBoundsConcurrency(t *testing.T) {
	urls := make([]string, 12)
	for i := range urls {
		urls[i] = "https://x.test/in/w/cat-" + string(rune('a'+i)) + "-id1"
	}

	harvester := NewMockHarvester()
	w := NewWorker(context.Background(), categories(urls...), harvester, &MockStore{}, nil, 3, 0)

	require.NoError(t, w.Start())
	assert.LessOrEqual(t, harvester.maxActive.Load(), int64(3))
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	harvester := NewMockHarvester()
	w := NewWorker(ctx, categories("https://x.test/in/w/mens-shoes-a1"),
		harvester, &MockStore{}, nil, 1, time.Hour)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
