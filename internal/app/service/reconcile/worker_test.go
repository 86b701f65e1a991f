package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Caddilac1/DataHub/internal/app/service/audit"
	"github.com/Caddilac1/DataHub/internal/models"
	"github.com/Caddilac1/DataHub/internal/platform/datamart"
	"github.com/Caddilac1/DataHub/pkg/config"
	"github.com/Caddilac1/DataHub/pkg/types"
)

type stubFulfillment struct {
	calls  int
	status string
	err    error
}

func (s *stubFulfillment) Purchase(_ context.Context, _, _, _ string) (*datamart.PurchaseResult, error) {
	panic("reconcile worker never purchases")
}

func (s *stubFulfillment) OrderStatus(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.status, s.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Telco{}, &models.Bundle{},
		&models.Order{}, &models.Payment{}, &models.AuditLog{},
	))
	return db
}

func newTestWorker(t *testing.T, db *gorm.DB, fulfillment *stubFulfillment) *Worker {
	t.Helper()
	log := zap.NewNop().Sugar()
	cfg := &config.Config{Reconcile: config.ReconcileConfig{Backoff: 5 * time.Millisecond}}
	w := NewWorker(db, log, cfg, fulfillment, audit.New(db, log, cfg))
	t.Cleanup(w.cancel)
	return w
}

func seedOrder(t *testing.T, db *gorm.DB, id string, status types.OrderStatus, providerOrderID string) *models.Order {
	t.Helper()
	order := &models.Order{
		ID: id, UserID: "USR-aabbccddee", TelcoID: "TEL-mtn0000001",
		BundleID: "BND-0000000001", PhoneNumber: "+233241234567", Status: status,
	}
	if providerOrderID != "" {
		order.ProviderOrderID = &providerOrderID
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func orderStatus(t *testing.T, db *gorm.DB, id string) types.OrderStatus {
	t.Helper()
	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", id).Error)
	return order.Status
}

func TestCheckOrder_UnknownOrderIsDone(t *testing.T) {
	db := newTestDB(t)
	fl := &stubFulfillment{}
	w := newTestWorker(t, db, fl)

	require.Equal(t, outcomeDone, w.checkOrder(context.Background(), "ORD-missing"))
	require.Zero(t, fl.calls)
}

func TestCheckOrder_TerminalOrderSkipsProvider(t *testing.T) {
	db := newTestDB(t)
	fl := &stubFulfillment{}
	w := newTestWorker(t, db, fl)
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusCompleted, "DM-1")

	require.Equal(t, outcomeDone, w.checkOrder(context.Background(), "ORD-0000000001"))
	require.Zero(t, fl.calls)
}

func TestCheckOrder_PendingOrderIsDropped(t *testing.T) {
	db := newTestDB(t)
	fl := &stubFulfillment{}
	w := newTestWorker(t, db, fl)
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusPending, "")

	require.Equal(t, outcomeDone, w.checkOrder(context.Background(), "ORD-0000000001"))
	require.Zero(t, fl.calls)
	require.Equal(t, types.OrderStatusPending, orderStatus(t, db, "ORD-0000000001"))
}

func TestCheckOrder_MissingProviderIDRetriesWithoutMutation(t *testing.T) {
	db := newTestDB(t)
	fl := &stubFulfillment{}
	w := newTestWorker(t, db, fl)
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusPaid, "")

	require.Equal(t, outcomeRetry, w.checkOrder(context.Background(), "ORD-0000000001"))
	require.Zero(t, fl.calls)
	require.Equal(t, types.OrderStatusPaid, orderStatus(t, db, "ORD-0000000001"))
}

func TestCheckOrder_ProviderErrorRetriesWithoutMutation(t *testing.T) {
	db := newTestDB(t)
	fl := &stubFulfillment{err: errors.New("provider down")}
	w := newTestWorker(t, db, fl)
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusProcessing, "DM-1")

	require.Equal(t, outcomeRetry, w.checkOrder(context.Background(), "ORD-0000000001"))
	require.Equal(t, 1, fl.calls)
	require.Equal(t, types.OrderStatusProcessing, orderStatus(t, db, "ORD-0000000001"))
}

func TestCheckOrder_EmptyProviderStatusRetries(t *testing.T) {
	db := newTestDB(t)
	fl := &stubFulfillment{status: ""}
	w := newTestWorker(t, db, fl)
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusProcessing, "DM-1")

	require.Equal(t, outcomeRetry, w.checkOrder(context.Background(), "ORD-0000000001"))
	require.Equal(t, types.OrderStatusProcessing, orderStatus(t, db, "ORD-0000000001"))
}

func TestCheckOrder_UnknownProviderStatusRetries(t *testing.T) {
	db := newTestDB(t)
	fl := &stubFulfillment{status: "delivered"}
	w := newTestWorker(t, db, fl)
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusProcessing, "DM-1")

	require.Equal(t, outcomeRetry, w.checkOrder(context.Background(), "ORD-0000000001"))
	require.Equal(t, types.OrderStatusProcessing, orderStatus(t, db, "ORD-0000000001"))
}

func TestCheckOrder_SameStatusRetries(t *testing.T) {
	db := newTestDB(t)
	fl := &stubFulfillment{status: "processing"}
	w := newTestWorker(t, db, fl)
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusProcessing, "DM-1")

	require.Equal(t, outcomeRetry, w.checkOrder(context.Background(), "ORD-0000000001"))
}

func TestCheckOrder_CompletedStatusConvergesAndAudits(t *testing.T) {
	db := newTestDB(t)
	fl := &stubFulfillment{status: "completed"}
	w := newTestWorker(t, db, fl)
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusProcessing, "DM-1")

	require.Equal(t, outcomeDone, w.checkOrder(context.Background(), "ORD-0000000001"))
	require.Equal(t, types.OrderStatusCompleted, orderStatus(t, db, "ORD-0000000001"))

	var entry models.AuditLog
	require.NoError(t, db.First(&entry, "action = ?", types.AuditActionOrderStatusChanged).Error)
	require.Equal(t, "reconcile", entry.Details["source"])
	require.Equal(t, string(types.OrderStatusProcessing), entry.Details["status_before"])
	require.Equal(t, string(types.OrderStatusCompleted), entry.Details["status_after"])
}

func TestApplyStatus_RefusesTerminalDowngrade(t *testing.T) {
	db := newTestDB(t)
	w := newTestWorker(t, db, &stubFulfillment{})
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusFailed, "DM-1")

	// A stale in-memory copy must not resurrect a terminal order.
	stale := &models.Order{ID: "ORD-0000000001", Status: types.OrderStatusProcessing}
	require.True(t, w.applyStatus(context.Background(), stale, types.OrderStatusCompleted))
	require.Equal(t, types.OrderStatusFailed, orderStatus(t, db, "ORD-0000000001"))

	var audits int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&audits).Error)
	require.Zero(t, audits)
}

func TestRecoverInflight_EnqueuesPaidAndProcessing(t *testing.T) {
	db := newTestDB(t)
	w := newTestWorker(t, db, &stubFulfillment{})
	seedOrder(t, db, "ORD-0000000001", types.OrderStatusPaid, "")
	seedOrder(t, db, "ORD-0000000002", types.OrderStatusProcessing, "DM-1")
	seedOrder(t, db, "ORD-0000000003", types.OrderStatusCompleted, "DM-2")
	seedOrder(t, db, "ORD-0000000004", types.OrderStatusPending, "")

	require.NoError(t, w.recoverInflight(context.Background()))

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-w.queue:
			got[id] = true
		default:
			t.Fatal("expected two enqueued orders")
		}
	}
	require.True(t, got["ORD-0000000001"])
	require.True(t, got["ORD-0000000002"])
	select {
	case id := <-w.queue:
		t.Fatalf("unexpected extra order %s", id)
	default:
	}
}

func TestEnqueue_FullQueueReschedulesInsteadOfBlocking(t *testing.T) {
	db := newTestDB(t)
	w := newTestWorker(t, db, &stubFulfillment{})

	for i := 0; i < cap(w.queue); i++ {
		w.Enqueue("ORD-filler")
	}

	done := make(chan struct{})
	go func() {
		w.Enqueue("ORD-overflow")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
