package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
	"gorm.io/gorm"
)

type gormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a gorm backed payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepository{db: db}
}

func (r *gormPaymentRepository) Create(ctx context.Context, tx *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *gormPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *gormPaymentRepository) FindByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// MarkTerminal uses a conditional update so that concurrent webhook
// deliveries for the same transaction race on the database row and
// exactly one of them observes the pending-to-terminal transition.
func (r *gormPaymentRepository) MarkTerminal(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *gormPaymentRepository) FindStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.PaymentStatusPending, olderThan).
		Order("created_at asc").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

func (r *gormPaymentRepository) SaveWebhookEvent(ctx context.Context, event *models.PaymentWebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *gormPaymentRepository) List(ctx context.Context, limit, offset int) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	return txs, err
}
