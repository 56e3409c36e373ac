package repositories

import (
	"fmt"

	"orderflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAuditRepository is a GORM implementation of AuditRepository.
type GORMAuditRepository struct {
	db *gorm.DB
}

// NewGORMAuditRepository creates a new instance of GORMAuditRepository.
func NewGORMAuditRepository(db *gorm.DB) *GORMAuditRepository {
	return &GORMAuditRepository{
		db: db,
	}
}

// Create persists a new audit entry.
func (r *GORMAuditRepository) Create(entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

// GetByEntity retrieves all audit entries for an entity, oldest first.
func (r *GORMAuditRepository) GetByEntity(entityType, entityID string) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at asc").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries for %s %s: %w", entityType, entityID, err)
	}
	return entries, nil
}
