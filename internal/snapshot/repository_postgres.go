package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wichananm65/inventory-dashboard/internal/recommendation"
)

const dateLayout = "2006-01-02"

// PostgresRepository implements Repository on the comparison_snapshot table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the snapshot table and its index when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS comparison_snapshot (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		window_from DATE NOT NULL,
		window_to DATE NOT NULL,
		branch_id BIGINT,
		rule_counts JSONB NOT NULL DEFAULT '{}',
		ml_counts JSONB NOT NULL DEFAULT '{}',
		matched INT NOT NULL DEFAULT 0,
		conflicts INT NOT NULL DEFAULT 0,
		conflict_product_ids BIGINT[] NOT NULL DEFAULT '{}'
	)`); err != nil {
		return fmt.Errorf("create comparison_snapshot: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS comparison_snapshot_created_at_idx ON comparison_snapshot (created_at DESC)`); err != nil {
		return fmt.Errorf("create comparison_snapshot index: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Save(ctx context.Context, s Snapshot) error {
	ruleCounts, err := json.Marshal(s.RuleCounts)
	if err != nil {
		return fmt.Errorf("encode rule counts: %w", err)
	}
	mlCounts, err := json.Marshal(s.MLCounts)
	if err != nil {
		return fmt.Errorf("encode ml counts: %w", err)
	}

	var branch sql.NullInt64
	if s.BranchID != nil {
		branch = sql.NullInt64{Int64: *s.BranchID, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO comparison_snapshot
		(id, created_at, window_from, window_to, branch_id, rule_counts, ml_counts, matched, conflicts, conflict_product_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID.String(), s.CreatedAt, s.From, s.To, branch, string(ruleCounts), string(mlCounts), s.Matched, s.Conflicts,
		pq.Array(nonNilIDs(s.ConflictProductIDs)))
	if err != nil {
		return fmt.Errorf("insert snapshot %s: %w", s.ID, err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, created_at, window_from, window_to, branch_id, rule_counts, ml_counts, matched, conflicts, conflict_product_ids
		FROM comparison_snapshot ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]Snapshot, 0)
	for rows.Next() {
		var (
			id                   string
			createdAt, from, to  time.Time
			branch               sql.NullInt64
			ruleCounts, mlCounts []byte
			conflictIDs          pq.Int64Array
			s                    Snapshot
		)
		if err := rows.Scan(&id, &createdAt, &from, &to, &branch, &ruleCounts, &mlCounts, &s.Matched, &s.Conflicts, &conflictIDs); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("snapshot id %q: %w", id, err)
		}
		s.CreatedAt = createdAt.UTC()
		s.From = from.Format(dateLayout)
		s.To = to.Format(dateLayout)
		if branch.Valid {
			b := branch.Int64
			s.BranchID = &b
		}
		s.ConflictProductIDs = nonNilIDs(conflictIDs)
		if s.RuleCounts, err = decodeCounts(ruleCounts); err != nil {
			return nil, err
		}
		if s.MLCounts, err = decodeCounts(mlCounts); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

func decodeCounts(raw []byte) (recommendation.CategoryCounts, error) {
	counts := recommendation.CategoryCounts{}
	if len(raw) == 0 {
		return counts, nil
	}
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, fmt.Errorf("decode category counts: %w", err)
	}
	return counts, nil
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
