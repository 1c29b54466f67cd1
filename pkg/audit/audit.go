// Package audit records mutating tool executions to the append-only audit
// trail. Every write to HR data goes through Record before the request is
// allowed to complete.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/store"
)

// Recorder appends audit entries. It is safe for concurrent use as long as
// the underlying store is.
type Recorder struct {
	store store.AuditStore
	now   func() time.Time
}

// NewRecorder builds a recorder over the given audit store.
func NewRecorder(s store.AuditStore) *Recorder {
	return &Recorder{store: s, now: time.Now}
}

// Record appends one entry for an executed mutating tool call. The write is
// synchronous: a nil return means the entry is durable. Callers must treat
// an error as fatal for the request.
func (r *Recorder) Record(ctx context.Context, actor domain.Actor, tool string, args map[string]any, outcome, summary string) (*domain.AuditEntry, error) {
	argJSON, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal audit arguments: %w", err)
	}
	entry := &domain.AuditEntry{
		ID:        uuid.NewString(),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Tool:      tool,
		Arguments: string(argJSON),
		Outcome:   outcome,
		Summary:   summary,
		Timestamp: r.now().UTC(),
	}
	if err := r.store.AppendAudit(ctx, entry); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}
	return entry, nil
}

// List returns audit entries in insertion order. limit > 0 returns the most
// recent entries, still oldest-first.
func (r *Recorder) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	return r.store.ListAudit(ctx, limit)
}
