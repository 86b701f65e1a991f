package statistics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Caddilac1/DataHub/internal/models"
	"github.com/Caddilac1/DataHub/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Order{}, &models.Payment{}))
	return db
}

func TestDashboard_EmptyDatabase(t *testing.T) {
	svc := New(newTestDB(t), zap.NewNop().Sugar())

	res, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Zero(t, res.TotalUsers)
	require.Zero(t, res.TotalOrders)
	require.Zero(t, res.TotalRevenue)
	require.Empty(t, res.UsersByRole)
	require.Empty(t, res.OrdersByState)
}

func TestDashboard_AggregatesCountsAndRevenue(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, zap.NewNop().Sugar())

	users := []*models.User{
		{ID: "USR-0000000001", FullName: "A", Email: "a@x.com", PhoneNumber: "+233200000001", Role: types.UserRoleCustomer, AccountStatus: types.AccountStatusActive},
		{ID: "USR-0000000002", FullName: "B", Email: "b@x.com", PhoneNumber: "+233200000002", Role: types.UserRoleCustomer, AccountStatus: types.AccountStatusActive},
		{ID: "USR-0000000003", FullName: "C", Email: "c@x.com", PhoneNumber: "+233200000003", Role: types.UserRoleAdmin, AccountStatus: types.AccountStatusActive},
	}
	for _, u := range users {
		require.NoError(t, db.Create(u).Error)
	}

	orders := []*models.Order{
		{ID: "ORD-0000000001", UserID: "USR-0000000001", TelcoID: "TEL-1", BundleID: "BND-1", PhoneNumber: "+233200000001", Status: types.OrderStatusCompleted},
		{ID: "ORD-0000000002", UserID: "USR-0000000001", TelcoID: "TEL-1", BundleID: "BND-1", PhoneNumber: "+233200000001", Status: types.OrderStatusCompleted},
		{ID: "ORD-0000000003", UserID: "USR-0000000002", TelcoID: "TEL-1", BundleID: "BND-1", PhoneNumber: "+233200000002", Status: types.OrderStatusFailed},
	}
	for _, o := range orders {
		require.NoError(t, db.Create(o).Error)
	}

	payments := []*models.Payment{
		{ID: "PAY-0000000001", OrderID: "ORD-0000000001", Amount: 10.00, Reference: "REF-0000000001", Status: types.PaymentStatusSuccess},
		{ID: "PAY-0000000002", OrderID: "ORD-0000000002", Amount: 6.50, Reference: "REF-0000000002", Status: types.PaymentStatusSuccess},
		{ID: "PAY-0000000003", OrderID: "ORD-0000000003", Amount: 99.99, Reference: "REF-0000000003", Status: types.PaymentStatusFailed},
	}
	for _, p := range payments {
		require.NoError(t, db.Create(p).Error)
	}

	res, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), res.TotalUsers)
	require.Equal(t, int64(2), res.UsersByRole["customer"])
	require.Equal(t, int64(1), res.UsersByRole["admin"])
	require.Equal(t, int64(3), res.TotalOrders)
	require.Equal(t, int64(2), res.OrdersByState["completed"])
	require.Equal(t, int64(1), res.OrdersByState["failed"])
	// Failed payments never count toward revenue.
	require.InDelta(t, 16.50, res.TotalRevenue, 0.001)
}
