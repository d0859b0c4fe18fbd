package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/enspm-hub/hub-backend/internal/storage/postgres"
)

// Recorder writes and reads audit entries. Writes always happen through the
// caller's Querier so the entry commits or rolls back with the mutation it
// documents. There is no update or delete path.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record inserts one entry. Old/new snapshots are stored as JSONB; nil maps
// become SQL NULL. IP and user agent come from the context set by the
// client-metadata middleware.
func (r *Recorder) Record(ctx context.Context, q postgres.Querier, e Entry) (Entry, error) {
	if !e.Action.Valid() {
		return Entry{}, fmt.Errorf("invalid audit action %q", e.Action)
	}

	meta := MetaFromContext(ctx)
	old, err := marshalValues(e.OldValues)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal old values: %w", err)
	}
	nw, err := marshalValues(e.NewValues)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal new values: %w", err)
	}

	const q1 = `
INSERT INTO audit_log (actor_id, action, entity_type, entity_id, old_values, new_values, ip_address, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at;
`
	err = q.QueryRow(ctx, q1,
		e.ActorID, string(e.Action), e.EntityType, e.EntityID,
		old, nw, meta.IPAddress, meta.UserAgent,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("insert audit entry: %w", err)
	}

	e.IPAddress = meta.IPAddress
	e.UserAgent = meta.UserAgent
	return e, nil
}

// List returns entries newest first with the given filters and pagination.
func (r *Recorder) List(ctx context.Context, q postgres.Querier, f ListFilters, limit, offset int) ([]Entry, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	n := 0

	if f.ActorID != nil {
		n++
		where += fmt.Sprintf(" AND actor_id = $%d", n)
		args = append(args, *f.ActorID)
	}
	if f.EntityType != "" {
		n++
		where += fmt.Sprintf(" AND entity_type = $%d", n)
		args = append(args, f.EntityType)
	}
	if f.Action != "" {
		n++
		where += fmt.Sprintf(" AND action = $%d", n)
		args = append(args, string(f.Action))
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT count(*) FROM audit_log "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
SELECT id, actor_id, action, entity_type, entity_id, old_values, new_values, ip_address, user_agent, created_at
FROM audit_log %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d;`, where, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e        Entry
			old, nw  []byte
			actionDB string
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &actionDB, &e.EntityType, &e.EntityID,
			&old, &nw, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Action = Action(actionDB)
		if e.OldValues, err = unmarshalValues(old); err != nil {
			return nil, 0, err
		}
		if e.NewValues, err = unmarshalValues(nw); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CountForEntity returns how many entries exist for one entity, used by
// tests to assert the one-row-per-mutation guarantee.
func (r *Recorder) CountForEntity(ctx context.Context, q postgres.Querier, entityType string, entityID uuid.UUID) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		"SELECT count(*) FROM audit_log WHERE entity_type = $1 AND entity_id = $2",
		entityType, entityID).Scan(&n)
	return n, err
}

func marshalValues(v map[string]any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalValues(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
