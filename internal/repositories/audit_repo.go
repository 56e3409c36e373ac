package repositories

import (
	"orderflow/internal/models"
)

// AuditRepository defines the interface for audit log data access.
type AuditRepository interface {
	Create(entry *models.AuditEntry) error
	GetByEntity(entityType, entityID string) ([]models.AuditEntry, error)
}
