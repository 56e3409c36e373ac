package models

import "time"

// AuditEntry is a best-effort change record for an entity. Before and After
// hold JSON snapshots of the entity around the change.
type AuditEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EntityType string    `json:"entity_type" gorm:"index;type:varchar(50)"`
	EntityID   string    `json:"entity_id" gorm:"index;type:varchar(36)"`
	Before     string    `json:"before" gorm:"type:text"`
	After      string    `json:"after" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}
