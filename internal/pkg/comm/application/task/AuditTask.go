package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/queue/port"
	repoAdapter "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/adapter"
)

// AuditTaskType is the queue task name for the best-effort activity trail.
const AuditTaskType = "comm:audit"

// AuditPayload is the JSON payload transported via the queue.
type AuditPayload struct {
	ActorID string    `json:"actorId"`
	Action  string    `json:"action"`
	Detail  string    `json:"detail"`
	At      time.Time `json:"at"`
}

// NewAuditTask encodes an audit payload into a queue task.
func NewAuditTask(p AuditPayload) (qport.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return qport.Task{}, err
	}
	return qport.Task{Type: AuditTaskType, Payload: b}, nil
}

// RegisterAuditTask binds the audit handler to the provided server. The
// handler writes through the audit repository; a failure here retries per
// queue policy and never touches the send path that enqueued it.
func RegisterAuditTask(srv qport.Server, pool *pgxpool.Pool) {
	repo := repoAdapter.NewPgAuditRepository(pool)
	srv.Register(AuditTaskType, func(ctx context.Context, t qport.Task) error {
		var p AuditPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return repo.Record(ctx, p.ActorID, p.Action, p.Detail)
	})
}
