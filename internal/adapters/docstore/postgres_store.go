package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
)

// PostgresStore keeps every document as a jsonb row keyed by
// (collection, id). Text comparisons use the "C" collation so ISO
// timestamps order lexicographically.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (_ ports.Document, err error) {
	defer obs.Time(ctx, "docstore.Get")(&err)

	var raw []byte
	err = s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ports.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, ports.ErrDocumentNotFound)
	}
	if err != nil {
		return ports.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	data, err := decodeData(raw)
	if err != nil {
		return ports.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return ports.Document{Collection: collection, ID: id, Data: data}, nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, q ports.Query) (_ []ports.Document, err error) {
	defer obs.Time(ctx, "docstore.Query")(&err)

	sql, args, err := buildSelect("collection", collection, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return s.run(ctx, sql, args)
}

func (s *PostgresStore) QueryGroup(ctx context.Context, group string, q ports.Query) (_ []ports.Document, err error) {
	defer obs.Time(ctx, "docstore.QueryGroup")(&err)

	sql, args, err := buildSelect("collection_group", group, q)
	if err != nil {
		return nil, fmt.Errorf("query group %s: %w", group, err)
	}
	return s.run(ctx, sql, args)
}

func (s *PostgresStore) run(ctx context.Context, sql string, args []any) ([]ports.Document, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	out := []ports.Document{}
	for rows.Next() {
		var d ports.Document
		var raw []byte
		if err := rows.Scan(&d.Collection, &d.ID, &raw); err != nil {
			return nil, fmt.Errorf("query documents: scan rows: %w", err)
		}
		if d.Data, err = decodeData(raw); err != nil {
			return nil, fmt.Errorf("query documents: %s: %w", d.Path(), err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query documents: row iteration: %w", err)
	}

	return out, nil
}

// buildSelect renders a parameterized SELECT over documents. scopeColumn is
// either collection or collection_group.
func buildSelect(scopeColumn, scope string, q ports.Query) (string, []any, error) {
	var b strings.Builder
	args := []any{scope}

	b.WriteString("SELECT collection, id, data FROM documents WHERE ")
	b.WriteString(scopeColumn)
	b.WriteString(" = $1")

	for _, f := range q.Filters {
		clause, fargs, err := filterClause(f, len(args)+1)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(" AND ")
		b.WriteString(clause)
		args = append(args, fargs...)
	}

	if q.StartAfter != "" {
		args = append(args, q.StartAfter)
		fmt.Fprintf(&b, ` AND id COLLATE "C" > $%d`, len(args))
	}

	b.WriteString(` ORDER BY id COLLATE "C", collection COLLATE "C"`)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return b.String(), args, nil
}

func filterClause(f ports.Filter, next int) (string, []any, error) {
	if f.Field == "" {
		return "", nil, errors.New("filter field is empty")
	}

	if f.Op == ports.OpEqual {
		payload, err := json.Marshal(map[string]any{f.Field: f.Value})
		if err != nil {
			return "", nil, fmt.Errorf("encode filter %q: %w", f.Field, err)
		}
		return fmt.Sprintf("data @> $%d::jsonb", next), []any{string(payload)}, nil
	}

	var op string
	switch f.Op {
	case ports.OpLessThan:
		op = "<"
	case ports.OpLessThanOrEqual:
		op = "<="
	default:
		return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
	}

	switch v := f.Value.(type) {
	case string:
		clause := fmt.Sprintf(
			`jsonb_typeof(data->$%d::text) = 'string' AND (data->>$%d::text) COLLATE "C" %s $%d`,
			next, next, op, next+1,
		)
		return clause, []any{f.Field, v}, nil
	default:
		if _, ok := toFloat(v); !ok {
			return "", nil, fmt.Errorf("filter %q: unsupported value type %T", f.Field, v)
		}
		payload, err := json.Marshal(v)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter %q: %w", f.Field, err)
		}
		clause := fmt.Sprintf(
			`jsonb_typeof(data->$%d::text) = 'number' AND data->$%d::text %s $%d::jsonb`,
			next, next, op, next+1,
		)
		return clause, []any{f.Field, string(payload)}, nil
	}
}

// Commit sends all writes as one pgx batch inside a transaction. Writes with
// a precondition only apply when the stored document contains the expected
// values; a miss rolls the whole commit back.
func (s *PostgresStore) Commit(ctx context.Context, writes []ports.Write) (err error) {
	defer obs.Time(ctx, "docstore.Commit")(&err)

	if len(writes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, w := range writes {
		sql, args, err := writeStatement(w)
		if err != nil {
			return fmt.Errorf("commit: write #%d: %w", i+1, err)
		}
		batch.Queue(sql, args...)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("commit: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	results := tx.SendBatch(ctx, batch)
	for _, w := range writes {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return fmt.Errorf("commit: %s/%s: %w", w.Collection, w.ID, err)
		}
		if len(w.Precondition) > 0 && tag.RowsAffected() == 0 {
			_ = results.Close()
			return fmt.Errorf("commit: %w", &ports.PreconditionError{Collection: w.Collection, ID: w.ID})
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("commit: close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: db commit: %w", err)
	}
	return nil
}

func writeStatement(w ports.Write) (string, []any, error) {
	if w.Collection == "" || w.ID == "" {
		return "", nil, errors.New("collection and id are required")
	}

	var cond string
	if len(w.Precondition) > 0 {
		payload, err := json.Marshal(w.Precondition)
		if err != nil {
			return "", nil, fmt.Errorf("encode precondition: %w", err)
		}
		cond = string(payload)
	}

	if w.Kind == ports.WriteDelete {
		if cond != "" {
			return `DELETE FROM documents WHERE collection = $1 AND id = $2 AND data @> $3::jsonb`,
				[]any{w.Collection, w.ID, cond}, nil
		}
		return `DELETE FROM documents WHERE collection = $1 AND id = $2`,
			[]any{w.Collection, w.ID}, nil
	}

	data := w.Data
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", nil, fmt.Errorf("encode data: %w", err)
	}

	var newData string
	switch w.Kind {
	case ports.WriteSet:
		newData = "$3::jsonb"
	case ports.WriteMerge:
		newData = "documents.data || $3::jsonb"
	default:
		return "", nil, fmt.Errorf("unknown write kind %d", w.Kind)
	}

	if cond != "" {
		sql := fmt.Sprintf(
			`UPDATE documents SET data = %s, updated_at = now()
			WHERE collection = $1 AND id = $2 AND data @> $4::jsonb`,
			newData,
		)
		return sql, []any{w.Collection, w.ID, string(payload), cond}, nil
	}

	sql := fmt.Sprintf(
		`INSERT INTO documents (collection, collection_group, id, data)
		VALUES ($1, $4, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE
		SET data = %s, updated_at = now()`,
		strings.Replace(newData, "$3::jsonb", "EXCLUDED.data", 1),
	)
	return sql, []any{w.Collection, w.ID, string(payload), domain.CollectionGroup(w.Collection)}, nil
}

func decodeData(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode document data: %w", err)
	}
	return data, nil
}
