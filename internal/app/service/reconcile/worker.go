package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Caddilac1/DataHub/internal/app/service/audit"
	"github.com/Caddilac1/DataHub/internal/app/service/order"
	"github.com/Caddilac1/DataHub/internal/models"
	"github.com/Caddilac1/DataHub/internal/platform/datamart"
	"github.com/Caddilac1/DataHub/pkg/config"
	"github.com/Caddilac1/DataHub/pkg/types"
)

const defaultBackoff = 30 * time.Second

// outcome of a single reconciliation attempt.
type outcome int

const (
	outcomeDone outcome = iota
	outcomeRetry
)

// Worker polls the fulfillment provider until each enqueued order converges
// to a terminal status. It shares no memory with the request path; all
// coordination happens through the persisted order rows. There is no maximum
// attempt count: an order is retried until a terminal status is observed or
// the order disappears.
type Worker struct {
	db          *gorm.DB
	log         *zap.SugaredLogger
	fulfillment datamart.Client
	auditSvc    *audit.Service
	backoff     time.Duration

	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(db *gorm.DB, log *zap.SugaredLogger, cfg *config.Config, fulfillment datamart.Client, auditSvc *audit.Service) *Worker {
	backoff := cfg.Reconcile.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		db:          db,
		log:         log,
		fulfillment: fulfillment,
		auditSvc:    auditSvc,
		backoff:     backoff,
		queue:       make(chan string, 256),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Enqueue schedules an immediate reconciliation attempt. Safe to call from
// any goroutine; a full queue falls back to a delayed retry instead of
// blocking the caller.
func (w *Worker) Enqueue(orderID string) {
	select {
	case <-w.ctx.Done():
	case w.queue <- orderID:
	default:
		w.reschedule(orderID)
	}
}

func (w *Worker) reschedule(orderID string) {
	time.AfterFunc(w.backoff, func() {
		select {
		case <-w.ctx.Done():
		case w.queue <- orderID:
		}
	})
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case orderID := <-w.queue:
			if w.checkOrder(w.ctx, orderID) == outcomeRetry {
				w.reschedule(orderID)
			}
		}
	}
}

// checkOrder performs one reconciliation attempt for an order and reports
// whether it needs to run again.
func (w *Worker) checkOrder(ctx context.Context, orderID string) outcome {
	var ord models.Order
	err := w.db.WithContext(ctx).Where("id = ?", orderID).First(&ord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Order deleted out from under the job: exit silently.
		return outcomeDone
	}
	if err != nil {
		w.log.Errorw("reconcile: order load failed", "order_id", orderID, "err", err)
		return outcomeRetry
	}

	if ord.Status.Terminal() {
		return outcomeDone
	}
	if ord.Status == types.OrderStatusPending {
		// Payment has not completed; polling must not start from pending.
		w.log.Warnw("reconcile: order still pending, dropping", "order_id", orderID)
		return outcomeDone
	}

	if ord.ProviderOrderID == nil || *ord.ProviderOrderID == "" {
		// Too early, not a failure: the provider id has not arrived yet.
		w.log.Debugw("reconcile: no provider order id yet", "order_id", orderID)
		return outcomeRetry
	}

	providerStatus, err := w.fulfillment.OrderStatus(ctx, *ord.ProviderOrderID)
	if err != nil {
		// Transient: reschedule without mutating the order.
		w.log.Warnw("reconcile: provider status fetch failed", "order_id", orderID, "err", err)
		return outcomeRetry
	}
	if providerStatus == "" {
		w.log.Warnw("reconcile: provider returned no status", "order_id", orderID)
		return outcomeRetry
	}

	next, ok := types.ParseOrderStatus(providerStatus)
	if !ok {
		w.log.Warnw("reconcile: unknown provider status", "order_id", orderID, "status", providerStatus)
		return outcomeRetry
	}

	if next == ord.Status {
		return outcomeRetry
	}

	if !w.applyStatus(ctx, &ord, next) {
		return outcomeRetry
	}

	if next.Terminal() {
		w.log.Infow("reconcile: order reached terminal status", "order_id", orderID, "status", next)
		return outcomeDone
	}
	return outcomeRetry
}

// applyStatus persists a provider-observed status. The guarded update refuses
// to downgrade an order that concurrently reached a terminal state.
func (w *Worker) applyStatus(ctx context.Context, ord *models.Order, next types.OrderStatus) bool {
	res := w.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status NOT IN ?", ord.ID, []types.OrderStatus{
			types.OrderStatusCompleted,
			types.OrderStatusFailed,
			types.OrderStatusCancelled,
		}).
		Update("status", next)
	if res.Error != nil {
		w.log.Errorw("reconcile: status update failed", "order_id", ord.ID, "err", res.Error)
		return false
	}
	if res.RowsAffected == 0 {
		// Lost to a concurrent terminal transition.
		return true
	}

	w.auditSvc.Record(ctx, types.AuditActionOrderStatusChanged, types.RequestMeta{}, map[string]any{
		"order_id":      ord.ID,
		"status_before": ord.Status,
		"status_after":  next,
		"source":        "reconcile",
	})
	return true
}

// recoverInflight re-enqueues orders that were mid-fulfillment when the
// process last stopped.
func (w *Worker) recoverInflight(ctx context.Context) error {
	var ids []string
	err := w.db.WithContext(ctx).Model(&models.Order{}).
		Where("status IN ?", []types.OrderStatus{types.OrderStatusPaid, types.OrderStatusProcessing}).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	for _, id := range ids {
		w.Enqueue(id)
	}
	if len(ids) > 0 {
		w.log.Infow("reconcile: recovered in-flight orders", "count", len(ids))
	}
	return nil
}

func registerLifecycle(lc fx.Lifecycle, w *Worker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.wg.Add(1)
			go w.run()
			return w.recoverInflight(ctx)
		},
		OnStop: func(ctx context.Context) error {
			w.cancel()
			done := make(chan struct{})
			go func() {
				w.wg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

// NewRescheduler exposes the worker to the order ledger without a package
// cycle.
func NewRescheduler(w *Worker) order.Rescheduler { return w }

var Module = fx.Options(
	fx.Provide(NewWorker),
	fx.Provide(NewRescheduler),
	fx.Invoke(registerLifecycle),
)
