package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Caddilac1/DataHub/internal/app/service/audit"
	"github.com/Caddilac1/DataHub/internal/app/service/catalog"
	"github.com/Caddilac1/DataHub/internal/models"
	"github.com/Caddilac1/DataHub/internal/platform/datamart"
	"github.com/Caddilac1/DataHub/internal/platform/paystack"
	"github.com/Caddilac1/DataHub/pkg/config"
	"github.com/Caddilac1/DataHub/pkg/logctx"
	"github.com/Caddilac1/DataHub/pkg/tool"
	"github.com/Caddilac1/DataHub/pkg/types"
)

// ErrValidation marks bad checkout input (inactive bundle, malformed phone).
// Validation failures create no rows and are never retried.
var ErrValidation = errors.New("validation failed")

// ErrNotFound is returned when an order or payment reference is unknown.
var ErrNotFound = errors.New("not found")

var phonePattern = regexp.MustCompile(`^\+?\d{9,15}$`)

const (
	callbackOutcomeSuccess = "success"
	callbackOutcomeFailed  = "failed"
	callbackOutcomeError   = "error"
)

// Service is the order ledger: the single source of truth for order and
// payment state. All transitions go through it, each inside one database
// transaction, and each emits an audit entry.
type Service struct {
	db          *gorm.DB
	log         *zap.SugaredLogger
	cfg         *config.Config
	auditSvc    *audit.Service
	catalogSvc  *catalog.Service
	gateway     paystack.Client
	fulfillment datamart.Client
	resched     Rescheduler
}

func NewService(
	db *gorm.DB,
	log *zap.SugaredLogger,
	cfg *config.Config,
	auditSvc *audit.Service,
	catalogSvc *catalog.Service,
	gateway paystack.Client,
	fulfillment datamart.Client,
	resched Rescheduler,
) *Service {
	return &Service{
		db:          db,
		log:         log,
		cfg:         cfg,
		auditSvc:    auditSvc,
		catalogSvc:  catalogSvc,
		gateway:     gateway,
		fulfillment: fulfillment,
		resched:     resched,
	}
}

// CreateOrder validates the bundle and phone number and creates an Order in
// pending together with its Payment (pending, fresh unique reference) in one
// transaction.
func (s *Service) CreateOrder(ctx context.Context, user *models.User, bundleID, phoneNumber string, meta types.RequestMeta) (*models.Order, *models.Payment, error) {
	if !phonePattern.MatchString(phoneNumber) {
		return nil, nil, fmt.Errorf("%w: malformed phone number", ErrValidation)
	}

	bundle, err := s.catalogSvc.GetBundle(ctx, bundleID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: bundle not found", ErrValidation)
	}
	if err != nil {
		return nil, nil, err
	}
	if !bundle.Purchasable() {
		return nil, nil, fmt.Errorf("%w: bundle is not available", ErrValidation)
	}
	if bundle.Telco == nil || !bundle.Telco.IsActive {
		return nil, nil, fmt.Errorf("%w: telco is not available", ErrValidation)
	}

	order := &models.Order{
		ID:          tool.NewOrderID(),
		UserID:      user.ID,
		TelcoID:     bundle.TelcoID,
		BundleID:    bundle.ID,
		PhoneNumber: phoneNumber,
		Status:      types.OrderStatusPending,
		IPAddress:   meta.IP,
		UserAgent:   meta.UserAgent,
	}
	payment := &models.Payment{
		ID:        tool.NewPaymentID(),
		OrderID:   order.ID,
		Amount:    bundle.Price,
		Reference: tool.NewReferenceID(),
		Status:    types.PaymentStatusPending,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	order.Bundle = bundle
	order.Telco = bundle.Telco
	s.auditSvc.Record(ctx, types.AuditActionOrderCreated, meta, map[string]any{
		"order_id":  order.ID,
		"bundle_id": bundle.ID,
		"amount":    payment.Amount,
		"reference": payment.Reference,
	})
	return order, payment, nil
}

// Checkout creates the order/payment pair and initializes the gateway
// transaction, returning the hosted payment page URL.
func (s *Service) Checkout(ctx context.Context, user *models.User, req *CheckoutRequest, meta types.RequestMeta) (*CheckoutResult, error) {
	order, payment, err := s.CreateOrder(ctx, user, req.BundleID, req.PhoneNumber, meta)
	if err != nil {
		return nil, err
	}

	init, err := s.gateway.Initialize(ctx, user.Email, payment.Amount, payment.Reference, s.cfg.Paystack.CallbackURL)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("gateway initialize failed",
			"order_id", order.ID, "reference", payment.Reference, "err", err)
		return nil, err
	}

	return &CheckoutResult{Order: order, Payment: payment, AuthorizationURL: init.AuthorizationURL}, nil
}

// HandleCallback verifies the gateway transaction for a reference and applies
// the outcome to the ledger. Verification is safe to repeat; double-crediting
// is prevented by MarkPaid's idempotence.
func (s *Service) HandleCallback(ctx context.Context, reference string, meta types.RequestMeta) *CallbackResult {
	res, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("gateway verify failed", "reference", reference, "err", err)
		return &CallbackResult{Outcome: callbackOutcomeError}
	}

	if res.Successful() {
		order, err := s.MarkPaid(ctx, reference, res.PaidAt, meta)
		if err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("mark paid failed", "reference", reference, "err", err)
			return &CallbackResult{Outcome: callbackOutcomeError}
		}
		return &CallbackResult{Outcome: callbackOutcomeSuccess, Order: order}
	}

	// An absent or ambiguous status is never treated as success.
	order, err := s.MarkFailed(ctx, reference, res.Status, meta)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("mark failed failed", "reference", reference, "err", err)
		return &CallbackResult{Outcome: callbackOutcomeError}
	}
	return &CallbackResult{Outcome: callbackOutcomeFailed, Order: order}
}

// MarkPaid transitions the payment identified by reference to success and its
// order to paid. Idempotent: once the payment is success, further calls are
// no-ops and emit no additional audit entries. On the first transition it
// dispatches fulfillment.
func (s *Service) MarkPaid(ctx context.Context, reference string, paidAt *time.Time, meta types.RequestMeta) (*models.Order, error) {
	payment, err := s.paymentByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment.Status == types.PaymentStatusSuccess {
		return s.GetOrder(ctx, payment.OrderID)
	}

	when := time.Now()
	if paidAt != nil {
		when = *paidAt
	}

	transitioned := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update keeps the transition race-safe: a concurrent
		// verify loses the race and becomes a no-op.
		res := tx.Model(&models.Payment{}).
			Where("reference = ? AND status = ?", reference, types.PaymentStatusPending).
			Updates(map[string]any{"status": types.PaymentStatusSuccess, "paid_at": when})
		if res.Error != nil {
			return fmt.Errorf("failed to update payment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", payment.OrderID, types.OrderStatusPending).
			Update("status", types.OrderStatusPaid).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.auditSvc.Record(ctx, types.AuditActionPaymentCompleted, meta, map[string]any{
			"order_id":      payment.OrderID,
			"reference":     reference,
			"amount":        payment.Amount,
			"status_before": types.OrderStatusPending,
			"status_after":  types.OrderStatusPaid,
		})
		s.dispatchFulfillment(ctx, payment.OrderID, meta)
	}
	return s.GetOrder(ctx, payment.OrderID)
}

// MarkFailed transitions the payment to failed and its order to failed.
func (s *Service) MarkFailed(ctx context.Context, reference, reason string, meta types.RequestMeta) (*models.Order, error) {
	payment, err := s.paymentByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	transitioned := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("reference = ? AND status = ?", reference, types.PaymentStatusPending).
			Update("status", types.PaymentStatusFailed)
		if res.Error != nil {
			return fmt.Errorf("failed to update payment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Order{}).
			Where("id = ? AND status NOT IN ?", payment.OrderID, terminalOrderStatuses()).
			Update("status", types.OrderStatusFailed).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.auditSvc.Record(ctx, types.AuditActionPaymentFailed, meta, map[string]any{
			"order_id":     payment.OrderID,
			"reference":    reference,
			"reason":       reason,
			"status_after": types.OrderStatusFailed,
		})
	}
	return s.GetOrder(ctx, payment.OrderID)
}

// dispatchFulfillment issues the one-shot provider purchase for a paid order
// and hands the order to the reconciliation worker. A purchase failure does
// not fail the payment flow; the worker keeps observing the order.
func (s *Service) dispatchFulfillment(ctx context.Context, orderID string, meta types.RequestMeta) {
	lg := logctx.FromCtx(ctx, s.log)

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		lg.Errorw("fulfillment dispatch: order load failed", "order_id", orderID, "err", err)
		return
	}

	res, err := s.fulfillment.Purchase(ctx, order.PhoneNumber, order.Telco.Code, order.Bundle.CapacityGB())
	if err != nil {
		lg.Errorw("fulfillment purchase failed", "order_id", orderID, "err", err)
		s.resched.Enqueue(orderID)
		return
	}

	updates := map[string]any{"status": types.OrderStatusProcessing}
	if res.ProviderOrderID != "" {
		updates["provider_order_id"] = res.ProviderOrderID
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, types.OrderStatusPaid).
		Updates(updates).Error; err != nil {
		lg.Errorw("fulfillment dispatch: order update failed", "order_id", orderID, "err", err)
	}

	s.auditSvc.Record(ctx, types.AuditActionFulfillmentDispatched, meta, map[string]any{
		"order_id":          orderID,
		"provider_order_id": res.ProviderOrderID,
		"provider_status":   res.Status,
	})
	s.resched.Enqueue(orderID)
}

func (s *Service) paymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Where("reference = ?", reference).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: payment reference %s", ErrNotFound, reference)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

// GetOrder loads one order with its bundle and telco.
func (s *Service) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Bundle").
		Preload("Telco").
		Where("id = ?", id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// ScanOrders implements paginated admin listing with filters.
func (s *Service) ScanOrders(ctx context.Context, req *ScanOrdersRequest) (*ScanOrdersResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Order{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd{Filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var rows []*models.Order
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}})
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &ScanOrdersResponse{Items: rows, Total: total}, nil
}

func terminalOrderStatuses() []types.OrderStatus {
	return []types.OrderStatus{
		types.OrderStatusCompleted,
		types.OrderStatusFailed,
		types.OrderStatusCancelled,
	}
}
