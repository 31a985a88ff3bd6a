package workflow

import (
	"context"
	"encoding/json"
)

// Gateway is the port to the workflow engine. Handlers and the outbox
// dispatcher only ever talk to this interface; the in-process engine is the
// only implementation today and an external orchestrator can slot in behind
// it without touching callers.
type Gateway interface {
	// StartWorkflow creates the phase rows for a cycle/report pair and opens
	// the first phase. Returns the workflow instance id.
	StartWorkflow(ctx context.Context, cycleId, reportId int) (string, error)

	// Signal advances or reopens the phase the signal addresses.
	Signal(ctx context.Context, phaseId int, signal string, payload json.RawMessage) error

	// Query answers read-only questions about a running workflow.
	Query(ctx context.Context, cycleId, reportId int, queryName string) (interface{}, error)
}
