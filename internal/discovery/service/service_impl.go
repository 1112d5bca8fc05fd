package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/coptimize/openinventory/internal/analysis"
	"github.com/coptimize/openinventory/internal/clock"
	"github.com/coptimize/openinventory/internal/config"
	"github.com/coptimize/openinventory/internal/discovery/domain"
	"github.com/coptimize/openinventory/internal/discovery/merge"
	"github.com/coptimize/openinventory/internal/metrics"
	productdomain "github.com/coptimize/openinventory/internal/product/domain"
	"github.com/coptimize/openinventory/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg      config.Config
	Store    *db.Store
	Log      *zap.Logger
	Clock    clock.Clock
	Tracker  domain.Tracker
	Products productdomain.Repository
	Client   analysis.Client
	Metrics  *metrics.Metrics
}

type chain struct {
	cancel context.CancelFunc
}

// Scheduler runs the delayed polling chains that reconcile analysis
// results into the catalog. One chain per external task id; watching an
// id again replaces its chain.
type Scheduler struct {
	store    *db.Store
	log      *zap.Logger
	clock    clock.Clock
	tracker  domain.Tracker
	products productdomain.Repository
	client   analysis.Client
	metrics  *metrics.Metrics
	delays   [3]time.Duration

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu     sync.Mutex
	chains map[string]*chain
	wg     sync.WaitGroup
}

func New(p Params) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:      p.Store,
		log:        p.Log.Named("discovery.scheduler"),
		clock:      p.Clock,
		tracker:    p.Tracker,
		products:   p.Products,
		client:     p.Client,
		metrics:    p.Metrics,
		delays:     [3]time.Duration{p.Cfg.DiscoveryRetryDelay, p.Cfg.DiscoveryRetryDelay, p.Cfg.DiscoveryFinalDelay},
		baseCtx:    ctx,
		baseCancel: cancel,
		chains:     make(map[string]*chain),
	}
}

func (s *Scheduler) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

func (s *Scheduler) StartFromImages(ctx context.Context, productID string, stockID *string, images []analysis.Image) (*domain.Task, error) {
	taskID, err := s.client.SubmitImages(ctx, images)
	if err != nil {
		return nil, err
	}
	return s.track(ctx, taskID, productID, stockID)
}

func (s *Scheduler) StartFromText(ctx context.Context, productID string, stockID *string, text string) (*domain.Task, error) {
	taskID, err := s.client.SubmitText(ctx, strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	return s.track(ctx, taskID, productID, stockID)
}

func (s *Scheduler) track(ctx context.Context, taskID, productID string, stockID *string) (*domain.Task, error) {
	now := s.now()
	t := &domain.Task{
		ProductID: productID,
		TaskID:    taskID,
		Status:    domain.StatusPending,
		StockID:   stockID,
		CreatedAt: now,
		UpdatedAt: &now,
	}
	if err := s.tracker.CreateTask(ctx, s.store.DB(), t); err != nil {
		return nil, err
	}
	s.Watch(taskID, productID, stockID)
	return s.tracker.FindByTaskID(ctx, s.store.DB(), taskID)
}

func (s *Scheduler) Watch(taskID, productID string, stockID *string) {
	s.mu.Lock()
	if old, ok := s.chains[taskID]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	c := &chain{cancel: cancel}
	s.chains[taskID] = c
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runChain(ctx, c, taskID, productID, stockID)
}

func (s *Scheduler) runChain(ctx context.Context, c *chain, taskID, productID string, stockID *string) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		if s.chains[taskID] == c {
			delete(s.chains, taskID)
		}
		s.mu.Unlock()
	}()

	for attempt := 0; attempt < len(s.delays); attempt++ {
		final := attempt == len(s.delays)-1

		timer := time.NewTimer(s.delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// Another chain or a restart may have settled the task while this
		// attempt was waiting.
		if t, err := s.tracker.FindByTaskID(ctx, s.store.DB(), taskID); err == nil && t != nil && t.Status.Terminal() {
			return
		}

		res, err := s.client.PollStatus(ctx, taskID)
		if err != nil {
			s.metrics.DiscoveryPolls.WithLabelValues("error").Inc()
			s.log.Warn("poll analysis status",
				zap.String("task_id", taskID),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			if final {
				s.cancelTask(taskID, "Error: "+err.Error())
				s.metrics.DiscoveryChains.WithLabelValues("error").Inc()
			}
			continue
		}
		s.metrics.DiscoveryPolls.WithLabelValues(string(res.Status)).Inc()

		switch res.Status {
		case analysis.StatusSuccess:
			s.completeTask(taskID, productID, res)
			s.metrics.DiscoveryChains.WithLabelValues("completed").Inc()
			return
		case analysis.StatusFailed:
			s.cancelTask(taskID, "Analysis failed on server")
			s.metrics.DiscoveryChains.WithLabelValues("failed").Inc()
			return
		default:
			if final {
				s.cancelTask(taskID, "Timeout: no results after final attempt")
				s.metrics.DiscoveryChains.WithLabelValues("timeout").Inc()
			}
		}
	}
}

// completeTask records the raw result and folds it into the product. It
// deliberately runs on a fresh context so a chain replacement cannot tear
// the write-back in half.
func (s *Scheduler) completeTask(taskID, productID string, res *analysis.PollResult) {
	ctx := context.Background()

	raw, err := json.Marshal(res)
	if err != nil {
		raw = []byte(`{"status":"SUCCESS","error":"serialization failed"}`)
	}
	if err := s.tracker.UpdateStatus(ctx, s.store.DB(), taskID, domain.StatusCompleted, string(raw), s.now()); err != nil {
		s.log.Warn("mark task completed", zap.String("task_id", taskID), zap.Error(err))
	}
	if res.Result == nil {
		return
	}

	p, err := s.products.FindByID(ctx, s.store.DB(), productID)
	if err != nil || p == nil {
		if err != nil {
			s.log.Warn("load product for merge", zap.String("product_id", productID), zap.Error(err))
		}
		return
	}
	stock, err := s.products.LatestStock(ctx, s.store.DB(), productID)
	if err != nil {
		s.log.Warn("load stock for merge", zap.String("product_id", productID), zap.Error(err))
	}

	merge.Apply(p, stock, res.Result)
	now := s.now()
	p.UpdatedAt = &now
	if stock != nil {
		stock.UpdatedAt = &now
	}

	if err := s.products.ApplyMerge(ctx, s.store.DB(), p, stock); err != nil {
		s.log.Warn("apply merge", zap.String("product_id", productID), zap.Error(err))
		return
	}
	s.metrics.MergesApplied.Inc()
	s.log.Info("discovery result merged",
		zap.String("task_id", taskID),
		zap.String("product_id", productID),
	)
}

func (s *Scheduler) cancelTask(taskID, reason string) {
	err := s.tracker.UpdateStatus(context.Background(), s.store.DB(), taskID, domain.StatusCancelled, reason, s.now())
	if err != nil {
		s.log.Warn("mark task cancelled", zap.String("task_id", taskID), zap.Error(err))
	}
}

func (s *Scheduler) Active(ctx context.Context) ([]domain.Task, error) {
	return s.tracker.FindActive(ctx, s.store.DB())
}

func (s *Scheduler) Task(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.tracker.FindByTaskID(ctx, s.store.DB(), strings.TrimSpace(taskID))
}

// Resume re-arms chains for tasks that were still pending when the
// previous process exited.
func (s *Scheduler) Resume(ctx context.Context) error {
	tasks, err := s.tracker.FindActive(ctx, s.store.DB())
	if err != nil {
		return err
	}
	for _, t := range tasks {
		s.Watch(t.TaskID, t.ProductID, t.StockID)
	}
	if len(tasks) > 0 {
		s.log.Info("resumed discovery chains", zap.Int("count", len(tasks)))
	}
	return nil
}

// Stop cancels every running chain and waits for them to unwind.
func (s *Scheduler) Stop() {
	s.baseCancel()
	s.wg.Wait()
}
