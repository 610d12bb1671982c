package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/codigix/Aluminium-erp-sub006/apperr"
	"github.com/codigix/Aluminium-erp-sub006/models"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue writes a pending notification row. Callers hand in the transaction
// that performs the business write so the row commits or rolls back with it.
func (r *OutboxRepository) Enqueue(row models.NotificationOutbox) error {
	row.Status = models.OutboxPending
	if err := r.db.Create(&row).Error; err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// FetchPending returns up to limit rows still waiting for delivery, oldest
// first, skipping rows that exhausted their attempts.
func (r *OutboxRepository) FetchPending(limit, maxAttempts int) ([]models.NotificationOutbox, error) {
	var rows []models.NotificationOutbox
	err := r.db.
		Where("status = ? AND attempts < ?", models.OutboxPending, maxAttempts).
		Order("id asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return rows, nil
}

func (r *OutboxRepository) MarkSent(id uint) error {
	now := time.Now().UTC()
	err := r.db.Model(&models.NotificationOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  models.OutboxSent,
			"sent_at": now,
		}).Error
	if err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

// MarkFailed bumps the attempt counter and records the error. Rows that hit
// maxAttempts flip to FAILED so the poller stops picking them up.
func (r *OutboxRepository) MarkFailed(id uint, cause error, maxAttempts int) error {
	var row models.NotificationOutbox
	if err := r.db.First(&row, id).Error; err != nil {
		return apperr.Persistence(err)
	}

	row.Attempts++
	row.LastError = cause.Error()
	if row.Attempts >= maxAttempts {
		row.Status = models.OutboxFailed
	}

	if err := r.db.Save(&row).Error; err != nil {
		return apperr.Persistence(err)
	}
	return nil
}
