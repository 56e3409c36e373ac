package audit

import (
	"encoding/json"
	"log"
	"sync"

	"orderflow/internal/models"
	"orderflow/internal/repositories"
)

// Auditor records entity changes. Recording is asynchronous and best-effort:
// a failed or dropped entry must never affect the outcome of the operation
// being audited.
type Auditor interface {
	RecordChange(entityType, entityID string, before, after interface{})
}

// AsyncAuditor buffers change records on a channel and persists them from a
// single worker goroutine. When the buffer is full the entry is dropped with
// a log line rather than blocking the caller.
type AsyncAuditor struct {
	repo    repositories.AuditRepository
	entries chan models.AuditEntry
	done    chan struct{}
	once    sync.Once
}

// NewAsyncAuditor creates an AsyncAuditor and starts its worker.
func NewAsyncAuditor(repo repositories.AuditRepository, bufferSize int) *AsyncAuditor {
	a := &AsyncAuditor{
		repo:    repo,
		entries: make(chan models.AuditEntry, bufferSize),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// RecordChange queues an audit entry. Before and after are marshaled to
// JSON; values that fail to marshal are recorded as empty snapshots.
func (a *AsyncAuditor) RecordChange(entityType, entityID string, before, after interface{}) {
	entry := models.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Before:     marshalSnapshot(before),
		After:      marshalSnapshot(after),
	}

	select {
	case a.entries <- entry:
	default:
		log.Printf("Warning: audit buffer full, dropping entry for %s %s", entityType, entityID)
	}
}

// Close stops accepting entries and waits for the worker to drain the queue.
func (a *AsyncAuditor) Close() {
	a.once.Do(func() {
		close(a.entries)
		<-a.done
	})
}

func (a *AsyncAuditor) run() {
	defer close(a.done)
	for entry := range a.entries {
		e := entry
		if err := a.repo.Create(&e); err != nil {
			log.Printf("Warning: failed to persist audit entry for %s %s: %v", e.EntityType, e.EntityID, err)
		}
	}
}

func marshalSnapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("Warning: failed to marshal audit snapshot: %v", err)
		return ""
	}
	return string(body)
}
