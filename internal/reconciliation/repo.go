package reconciliation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	dbtypes "github.com/paylinkhq/paylink-backend/pkg/db/types"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
	"github.com/paylinkhq/paylink-backend/pkg/pagination"
)

// Repository exposes persistence helpers for reconciliation alerts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, alert *models.ReconciliationAlert) error
	FindUnresolvedByDedupKey(ctx context.Context, dedupKey string) (*models.ReconciliationAlert, error)
	ListActive(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ReconciliationAlert, error)
	ListResolved(ctx context.Context, params listResolvedParams) ([]models.ReconciliationAlert, *pagination.Cursor, error)
	CountUnresolvedByType(ctx context.Context, orgID uuid.UUID, alertType enums.AlertType) (int64, error)
	FindMostRecent(ctx context.Context, orgID uuid.UUID) (*models.ReconciliationAlert, error)
	Resolve(ctx context.Context, alertID uuid.UUID, reason string, now time.Time) (alertMarkResult, error)
	ResolveOlderThan(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an alert repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listResolvedParams struct {
	OrgID  uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

type alertMarkResult struct {
	Updated bool
	Found   bool
}

// severityRank orders alerts high before medium before low regardless of
// the enum's lexical order.
const severityRank = "CASE severity WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, alert *models.ReconciliationAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *repositoryImpl) FindUnresolvedByDedupKey(ctx context.Context, dedupKey string) (*models.ReconciliationAlert, error) {
	var alert models.ReconciliationAlert
	err := r.db.WithContext(ctx).
		Where("dedup_key = ? AND resolved = ?", dedupKey, false).
		First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repositoryImpl) ListActive(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ReconciliationAlert, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReconciliationAlert{}).
		Where("resolved = ?", false)
	if orgID != uuid.Nil {
		query = query.Where("organization_id = ?", orgID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var alerts []models.ReconciliationAlert
	if err := query.Order(severityRank + " DESC, created_at DESC, id DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repositoryImpl) ListResolved(ctx context.Context, params listResolvedParams) ([]models.ReconciliationAlert, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.ReconciliationAlert{}).
		Where("resolved = ?", true)
	if params.OrgID != uuid.Nil {
		query = query.Where("organization_id = ?", params.OrgID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var alerts []models.ReconciliationAlert
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&alerts).Error; err != nil {
		return nil, nil, err
	}

	if len(alerts) > normalized {
		next := alerts[normalized]
		alerts = alerts[:normalized]
		return alerts, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return alerts, nil, nil
}

func (r *repositoryImpl) CountUnresolvedByType(ctx context.Context, orgID uuid.UUID, alertType enums.AlertType) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReconciliationAlert{}).
		Where("resolved = ? AND type = ?", false, alertType)
	if orgID != uuid.Nil {
		query = query.Where("organization_id = ?", orgID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repositoryImpl) FindMostRecent(ctx context.Context, orgID uuid.UUID) (*models.ReconciliationAlert, error) {
	query := r.db.WithContext(ctx).Model(&models.ReconciliationAlert{})
	if orgID != uuid.Nil {
		query = query.Where("organization_id = ?", orgID)
	}

	var alert models.ReconciliationAlert
	err := query.Order("created_at DESC, id DESC").First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repositoryImpl) Resolve(ctx context.Context, alertID uuid.UUID, reason string, now time.Time) (alertMarkResult, error) {
	var alert models.ReconciliationAlert
	err := r.db.WithContext(ctx).
		Where("id = ? AND resolved = ?", alertID, false).
		First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		mark := alertMarkResult{}
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.ReconciliationAlert{}).
			Where("id = ?", alertID).
			Count(&count).Error; err != nil {
			return alertMarkResult{}, err
		}
		mark.Found = count > 0
		return mark, nil
	}
	if err != nil {
		return alertMarkResult{}, err
	}

	metadata := alert.Metadata
	if metadata == nil {
		metadata = dbtypes.Metadata{}
	}
	if reason != "" {
		metadata["resolvedReason"] = reason
	}

	result := r.db.WithContext(ctx).
		Model(&models.ReconciliationAlert{}).
		Where("id = ? AND resolved = ?", alertID, false).
		Updates(map[string]any{
			"resolved":    true,
			"resolved_at": now,
			"metadata":    metadata,
			"updated_at":  now,
		})
	if result.Error != nil {
		return alertMarkResult{}, result.Error
	}
	return alertMarkResult{Found: true, Updated: result.RowsAffected > 0}, nil
}

func (r *repositoryImpl) ResolveOlderThan(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReconciliationAlert{}).
		Where("resolved = ? AND created_at < ?", false, cutoff).
		Updates(map[string]any{
			"resolved":    true,
			"resolved_at": now,
			"metadata":    dbtypes.Metadata{"autoResolved": true, "reason": "Automatically resolved due to age"},
			"updated_at":  now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
