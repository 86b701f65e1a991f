package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Caddilac1/DataHub/internal/models"
	"github.com/Caddilac1/DataHub/pkg/config"
	"github.com/Caddilac1/DataHub/pkg/logctx"
	"github.com/Caddilac1/DataHub/pkg/tool"
	"github.com/Caddilac1/DataHub/pkg/types"
)

// Service appends entries to the audit trail. Writes are best-effort: a
// failed insert is logged and swallowed so it can never fail the business
// operation that triggered it.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	cfg *config.Config
}

func New(db *gorm.DB, log *zap.SugaredLogger, cfg *config.Config) *Service {
	return &Service{db: db, log: log, cfg: cfg}
}

// Record appends one audit entry. Actor and request metadata are passed
// explicitly by the caller; system actions pass an empty ActorID.
func (s *Service) Record(ctx context.Context, action types.AuditAction, meta types.RequestMeta, details map[string]any) {
	entry := &models.AuditLog{
		ID:        tool.NewAuditID(),
		Action:    action,
		Details:   datatypes.JSONMap(details),
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if meta.ActorID != "" {
		actor := meta.ActorID
		entry.UserID = &actor
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to write audit log",
			"action", action, "err", err)
	}
}

// Sweep deletes entries older than the configured retention window. It is an
// administrative operation, never run automatically per request.
func (s *Service) Sweep(ctx context.Context, meta types.RequestMeta) (int64, error) {
	days := s.cfg.Audit.RetentionDays
	if days <= 0 {
		days = 365
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("audit sweep: %w", res.Error)
	}

	s.Record(ctx, types.AuditActionAuditSweep, meta, map[string]any{
		"cutoff":  cutoff,
		"deleted": res.RowsAffected,
	})
	return res.RowsAffected, nil
}

type ScanLogsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanLogsResponse struct {
	Items []*models.AuditLog `json:"items"`
	Total int64              `json:"total"`
}

// ScanLogs implements paginated admin listing with filters.
func (s *Service) ScanLogs(ctx context.Context, req *ScanLogsRequest) (*ScanLogsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd{Filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var rows []*models.AuditLog
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
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return &ScanLogsResponse{Items: rows, Total: total}, nil
}
