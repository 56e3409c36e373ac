package audit_test

import (
	"testing"

	"orderflow/internal/audit"
	"orderflow/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncAuditor_PersistsEntries(t *testing.T) {
	repo := repositories.NewMockAuditRepository()
	auditor := audit.NewAsyncAuditor(repo, 16)

	type snapshot struct {
		Status string `json:"status"`
	}
	auditor.RecordChange("order", "o-1", snapshot{Status: "PENDING"}, snapshot{Status: "PAID"})
	auditor.RecordChange("order", "o-1", snapshot{Status: "PAID"}, snapshot{Status: "PROCESSING"})
	auditor.RecordChange("payment", "p-1", nil, snapshot{Status: "COMPLETED"})

	// Close drains the queue before returning
	auditor.Close()

	entries, err := repo.GetByEntity("order", "o-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.JSONEq(t, `{"status":"PENDING"}`, entries[0].Before)
	assert.JSONEq(t, `{"status":"PAID"}`, entries[0].After)

	payments, err := repo.GetByEntity("payment", "p-1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Empty(t, payments[0].Before)
}

func TestAsyncAuditor_CloseIsIdempotent(t *testing.T) {
	repo := repositories.NewMockAuditRepository()
	auditor := audit.NewAsyncAuditor(repo, 4)

	auditor.Close()
	auditor.Close()
}
