package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/coptimize/openinventory/internal/analysis"
	"github.com/coptimize/openinventory/internal/clock"
	"github.com/coptimize/openinventory/internal/config"
	"github.com/coptimize/openinventory/internal/discovery/domain"
	discoveryrepo "github.com/coptimize/openinventory/internal/discovery/repository"
	"github.com/coptimize/openinventory/internal/metrics"
	productrepo "github.com/coptimize/openinventory/internal/product/repository"
	"github.com/coptimize/openinventory/pkg/db"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClient struct {
	mu    sync.Mutex
	polls int
	// respond maps the 1-based poll attempt to a result; later attempts
	// reuse the last entry.
	respond []analysis.PollResult
	err     error
}

func (f *fakeClient) SubmitImages(context.Context, []analysis.Image) (string, error) {
	return "task-img", nil
}

func (f *fakeClient) SubmitText(context.Context, string) (string, error) {
	return "task-txt", nil
}

func (f *fakeClient) PollStatus(context.Context, string) (*analysis.PollResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.err != nil {
		return nil, f.err
	}
	idx := f.polls - 1
	if idx >= len(f.respond) {
		idx = len(f.respond) - 1
	}
	res := f.respond[idx]
	return &res, nil
}

func (f *fakeClient) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func strptr(s string) *string { return &s }

func newScheduler(t *testing.T, client analysis.Client) (*Scheduler, *db.Store) {
	t.Helper()

	store, err := db.Open(filepath.Join(t.TempDir(), "store.db"), db.ModeSingleTenant, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s := New(Params{
		Cfg: config.Config{
			DiscoveryRetryDelay: 20 * time.Millisecond,
			DiscoveryFinalDelay: 40 * time.Millisecond,
		},
		Store:    store,
		Log:      zap.NewNop(),
		Clock:    clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
		Tracker:  discoveryrepo.Provide(),
		Products: productrepo.Provide(db.ModeSingleTenant),
		Client:   client,
		Metrics:  metrics.New(prometheus.NewRegistry()),
	})
	t.Cleanup(s.Stop)
	return s, store
}

func seedProduct(t *testing.T, store *db.Store, id, name string) {
	t.Helper()
	require.NoError(t, store.DB().Exec(
		`INSERT INTO products (id, name, price, quantity, created_at) VALUES (?, ?, 2.5, 7, '2024-01-01T00:00:00Z')`,
		id, name,
	).Error)
}

func waitForStatus(t *testing.T, s *Scheduler, taskID string, want domain.Status) *domain.Task {
	t.Helper()
	var got *domain.Task
	require.Eventually(t, func() bool {
		task, err := s.Task(context.Background(), taskID)
		if err != nil || task == nil {
			return false
		}
		got = task
		return task.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return got
}

func TestChainCompletesAndMergesResult(t *testing.T) {
	client := &fakeClient{respond: []analysis.PollResult{{
		Status: analysis.StatusSuccess,
		Result: &analysis.Inference{Name: strptr("Coca-Cola Classic")},
	}}}
	s, store := newScheduler(t, client)
	seedProduct(t, store, "p-1", "New Product")

	task, err := s.StartFromText(context.Background(), "p-1", nil, "COCA-COLA")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, task.Status)

	done := waitForStatus(t, s, task.TaskID, domain.StatusCompleted)
	require.Contains(t, *done.TaskResult, "Coca-Cola Classic")
	require.Equal(t, 1, client.pollCount())

	var name string
	require.NoError(t, store.DB().Raw(`SELECT name FROM products WHERE id = 'p-1'`).Scan(&name).Error)
	require.Equal(t, "Coca-Cola Classic", name)

	// Price and quantity survive untouched.
	var price float64
	require.NoError(t, store.DB().Raw(`SELECT price FROM products WHERE id = 'p-1'`).Scan(&price).Error)
	require.Equal(t, 2.5, price)
}

func TestChainCancelsAfterFinalTimeout(t *testing.T) {
	client := &fakeClient{respond: []analysis.PollResult{{Status: analysis.StatusProcessing}}}
	s, store := newScheduler(t, client)
	seedProduct(t, store, "p-1", "Cola")

	task, err := s.StartFromText(context.Background(), "p-1", nil, "x")
	require.NoError(t, err)

	done := waitForStatus(t, s, task.TaskID, domain.StatusCancelled)
	require.Contains(t, *done.TaskResult, "Timeout")
	require.Equal(t, 3, client.pollCount())
}

func TestServerFailureCancelsImmediately(t *testing.T) {
	client := &fakeClient{respond: []analysis.PollResult{{Status: analysis.StatusFailed}}}
	s, store := newScheduler(t, client)
	seedProduct(t, store, "p-1", "Cola")

	task, err := s.StartFromText(context.Background(), "p-1", nil, "x")
	require.NoError(t, err)

	done := waitForStatus(t, s, task.TaskID, domain.StatusCancelled)
	require.Contains(t, *done.TaskResult, "Analysis failed on server")
	require.Equal(t, 1, client.pollCount())
}

func TestTransportErrorsCancelOnFinalAttempt(t *testing.T) {
	client := &fakeClient{err: context.DeadlineExceeded}
	s, store := newScheduler(t, client)
	seedProduct(t, store, "p-1", "Cola")

	task, err := s.StartFromText(context.Background(), "p-1", nil, "x")
	require.NoError(t, err)

	done := waitForStatus(t, s, task.TaskID, domain.StatusCancelled)
	require.Contains(t, *done.TaskResult, "Error:")
	require.Equal(t, 3, client.pollCount())
}

func TestWatchReplacesExistingChain(t *testing.T) {
	client := &fakeClient{respond: []analysis.PollResult{{Status: analysis.StatusProcessing}}}
	s, store := newScheduler(t, client)
	seedProduct(t, store, "p-1", "Cola")

	task, err := s.StartFromText(context.Background(), "p-1", nil, "x")
	require.NoError(t, err)
	// Replace before the first delay elapses; only the new chain polls.
	s.Watch(task.TaskID, "p-1", nil)

	waitForStatus(t, s, task.TaskID, domain.StatusCancelled)
	require.Equal(t, 3, client.pollCount())
}

func TestTerminalTaskIsNeverPolled(t *testing.T) {
	client := &fakeClient{respond: []analysis.PollResult{{Status: analysis.StatusSuccess}}}
	s, store := newScheduler(t, client)
	seedProduct(t, store, "p-1", "Cola")

	require.NoError(t, store.DB().Exec(
		`INSERT INTO product_discovery_tasks (product_id, task_id, status, created_at) VALUES ('p-1', 'task-done', 'cancelled', '2024-01-01T00:00:00Z')`,
	).Error)

	s.Watch("task-done", "p-1", nil)
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, 0, client.pollCount())
}

func TestUpdateStatusIgnoresUnknownTask(t *testing.T) {
	s, store := newScheduler(t, &fakeClient{})

	tracker := discoveryrepo.Provide()
	err := tracker.UpdateStatus(context.Background(), store.DB(), "ghost", domain.StatusCancelled, "x", "2024-01-01T00:00:00Z")
	require.NoError(t, err)

	task, err := s.Task(context.Background(), "ghost")
	require.NoError(t, err)
	require.Nil(t, task)
}

func TestResumeRearmsPendingChains(t *testing.T) {
	client := &fakeClient{respond: []analysis.PollResult{{Status: analysis.StatusFailed}}}
	s, store := newScheduler(t, client)
	seedProduct(t, store, "p-1", "Cola")

	require.NoError(t, store.DB().Exec(
		`INSERT INTO product_discovery_tasks (product_id, task_id, status, created_at) VALUES ('p-1', 'task-old', 'pending', '2024-01-01T00:00:00Z')`,
	).Error)

	require.NoError(t, s.Resume(context.Background()))
	waitForStatus(t, s, "task-old", domain.StatusCancelled)
}
