package repositories

import (
	"sync"
	"time"

	"orderflow/internal/models"

	"github.com/google/uuid"
)

// MockAuditRepository is an in-memory implementation of AuditRepository.
type MockAuditRepository struct {
	entries []models.AuditEntry
	mu      sync.RWMutex
}

// NewMockAuditRepository creates a new instance of MockAuditRepository.
func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

// Create appends a new audit entry.
func (r *MockAuditRepository) Create(entry *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

// GetByEntity returns all audit entries for an entity in insertion order.
func (r *MockAuditRepository) GetByEntity(entityType, entityID string) ([]models.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.AuditEntry
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			matched = append(matched, e)
		}
	}
	return matched, nil
}
