package statistics

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Caddilac1/DataHub/internal/models"
	"github.com/Caddilac1/DataHub/pkg/types"
)

// Service aggregates the dashboard metrics the back office shows: user and
// order breakdowns plus realized revenue.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type DashboardResponse struct {
	TotalUsers    int64            `json:"total_users"`
	UsersByRole   map[string]int64 `json:"users_by_role"`
	TotalOrders   int64            `json:"total_orders"`
	OrdersByState map[string]int64 `json:"orders_by_status"`
	// TotalRevenue is the sum of successful payment amounts in cedis.
	TotalRevenue float64 `json:"total_revenue"`
}

type groupCount struct {
	Key   string `gorm:"column:key"`
	Count int64  `gorm:"column:count"`
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	out := &DashboardResponse{
		UsersByRole:   map[string]int64{},
		OrdersByState: map[string]int64{},
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var roles []groupCount
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("role AS key, COUNT(*) AS count").
		Group("role").
		Scan(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	for _, r := range roles {
		out.UsersByRole[r.Key] = r.Count
	}

	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&out.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var states []groupCount
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&states).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, st := range states {
		out.OrdersByState[st.Key] = st.Count
	}

	var revenue *float64
	if err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Select("SUM(amount)").
		Where("status = ?", types.PaymentStatusSuccess).
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if revenue != nil {
		out.TotalRevenue = *revenue
	}

	return out, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
