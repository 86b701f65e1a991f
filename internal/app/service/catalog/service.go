package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Caddilac1/DataHub/internal/app/service/audit"
	"github.com/Caddilac1/DataHub/internal/models"
	"github.com/Caddilac1/DataHub/pkg/tool"
	"github.com/Caddilac1/DataHub/pkg/types"
)

// ErrDuplicate is returned for a bundle or telco that already exists.
var ErrDuplicate = errors.New("duplicate reference data")

// ErrProtected is returned when deactivation or deletion would orphan
// historical orders.
var ErrProtected = errors.New("referenced by existing orders")

// ErrNotFound is returned when the referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Service manages reference data (telcos and bundles). Bundles are only ever
// soft-deleted; every read path filters on the active flags.
type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	auditSvc *audit.Service
}

func New(db *gorm.DB, log *zap.SugaredLogger, auditSvc *audit.Service) *Service {
	return &Service{db: db, log: log, auditSvc: auditSvc}
}

// ListBundles returns purchasable bundles of active telcos, ordered by telco
// name then size. telcoCode narrows the listing to one operator.
func (s *Service) ListBundles(ctx context.Context, telcoCode string) ([]*models.Bundle, error) {
	q := s.db.WithContext(ctx).
		Preload("Telco").
		Joins("JOIN telco ON telco.id = bundle.telco_id AND telco.is_active = ?", true).
		Where("bundle.is_active = ?", true).
		Order("telco.name, bundle.size_mb")
	if telcoCode != "" {
		q = q.Where("telco.code = ?", telcoCode)
	}

	var bundles []*models.Bundle
	if err := q.Find(&bundles).Error; err != nil {
		return nil, fmt.Errorf("failed to list bundles: %w", err)
	}
	return bundles, nil
}

// GetBundle loads one active bundle together with its telco.
func (s *Service) GetBundle(ctx context.Context, id string) (*models.Bundle, error) {
	var bundle models.Bundle
	err := s.db.WithContext(ctx).
		Preload("Telco").
		Where("id = ? AND is_active = ?", id, true).
		First(&bundle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}
	return &bundle, nil
}

type CreateTelcoRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

func (s *Service) CreateTelco(ctx context.Context, req *CreateTelcoRequest, meta types.RequestMeta) (*models.Telco, error) {
	telco := &models.Telco{
		ID:       tool.NewTelcoID(),
		Name:     req.Name,
		Code:     req.Code,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(telco).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: telco code %s", ErrDuplicate, req.Code)
		}
		return nil, fmt.Errorf("failed to create telco: %w", err)
	}

	s.auditSvc.Record(ctx, types.AuditActionTelcoCreated, meta, map[string]any{
		"telco_id": telco.ID,
		"code":     telco.Code,
	})
	return telco, nil
}

type CreateBundleRequest struct {
	TelcoID   string  `json:"telco_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	SizeMB    int     `json:"size_mb" binding:"required,gt=0"`
	Price     float64 `json:"price" binding:"required,gt=0"`
	IsLimited bool    `json:"is_limited"`
}

func (s *Service) CreateBundle(ctx context.Context, req *CreateBundleRequest, meta types.RequestMeta) (*models.Bundle, error) {
	var telco models.Telco
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", req.TelcoID, true).First(&telco).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: telco %s", ErrNotFound, req.TelcoID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load telco: %w", err)
	}

	bundle := &models.Bundle{
		ID:        tool.NewBundleID(),
		TelcoID:   telco.ID,
		Name:      req.Name,
		SizeMB:    req.SizeMB,
		Price:     req.Price,
		IsInstock: true,
		IsLimited: req.IsLimited,
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(bundle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: bundle %s %dMB for %s", ErrDuplicate, req.Name, req.SizeMB, telco.Name)
		}
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}

	s.auditSvc.Record(ctx, types.AuditActionBundleCreated, meta, map[string]any{
		"bundle_id": bundle.ID,
		"telco_id":  telco.ID,
		"size_mb":   bundle.SizeMB,
		"price":     bundle.Price,
	})
	return bundle, nil
}

type UpdateBundleRequest struct {
	Price        *float64 `json:"price"`
	IsInstock    *bool    `json:"is_instock"`
	IsOutOfStock *bool    `json:"is_out_of_stock"`
	IsLimited    *bool    `json:"is_limited"`
}

func (s *Service) UpdateBundle(ctx context.Context, id string, req *UpdateBundleRequest, meta types.RequestMeta) (*models.Bundle, error) {
	var bundle models.Bundle
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&bundle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: bundle %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}

	updates := map[string]any{}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsInstock != nil {
		updates["is_instock"] = *req.IsInstock
	}
	if req.IsOutOfStock != nil {
		updates["is_out_of_stock"] = *req.IsOutOfStock
	}
	if req.IsLimited != nil {
		updates["is_limited"] = *req.IsLimited
	}
	if len(updates) == 0 {
		return &bundle, nil
	}

	if err := s.db.WithContext(ctx).Model(&bundle).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update bundle: %w", err)
	}

	s.auditSvc.Record(ctx, types.AuditActionBundleUpdated, meta, map[string]any{
		"bundle_id": bundle.ID,
		"changes":   updates,
	})
	return &bundle, nil
}

// DeactivateBundle soft-deletes the bundle. Historical orders keep their
// reference; read paths stop serving it.
func (s *Service) DeactivateBundle(ctx context.Context, id string, meta types.RequestMeta) error {
	res := s.db.WithContext(ctx).
		Model(&models.Bundle{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate bundle: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: bundle %s", ErrNotFound, id)
	}

	s.auditSvc.Record(ctx, types.AuditActionBundleDeactivated, meta, map[string]any{
		"bundle_id": id,
	})
	return nil
}

// DeactivateTelco soft-deletes the telco and hides its bundles from listing.
func (s *Service) DeactivateTelco(ctx context.Context, id string, meta types.RequestMeta) error {
	res := s.db.WithContext(ctx).
		Model(&models.Telco{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate telco: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: telco %s", ErrNotFound, id)
	}

	s.auditSvc.Record(ctx, types.AuditActionTelcoDeactivated, meta, map[string]any{
		"telco_id": id,
	})
	return nil
}
