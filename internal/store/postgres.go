package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/gatewayplanning/plancheck/internal/db"
	"github.com/gatewayplanning/plancheck/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":       `INSERT INTO validation_runs (id, submission_id, status, result, gate_triggered, gate_reason, llm_annotation, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"get_run":          `SELECT id, submission_id, status, result, gate_triggered, gate_reason, llm_annotation, created_at FROM validation_runs WHERE id = $1`,
	"insert_changeset": `INSERT INTO changesets (id, parent_submission_id, child_submission_id, items, significance, requires_validation, computed_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"get_changeset":    `SELECT id, parent_submission_id, child_submission_id, items, significance, requires_validation, computed_at FROM changesets WHERE parent_submission_id = $1 AND child_submission_id = $2 ORDER BY computed_at DESC LIMIT 1`,
	"insert_override":  `INSERT INTO officer_overrides (id, run_id, rule_id, original_status, override_status, justification, officer_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"insert_resolution": `INSERT INTO field_resolutions (id, submission_id, field_key, chosen_document_id, officer_id, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS validation_runs (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	submission_id  TEXT NOT NULL,
	status         TEXT NOT NULL,
	result         JSONB,
	gate_triggered BOOLEAN NOT NULL DEFAULT false,
	gate_reason    JSONB,
	llm_annotation TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS changesets (
	id                   TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	parent_submission_id TEXT NOT NULL,
	child_submission_id  TEXT NOT NULL,
	items                JSONB NOT NULL,
	significance         DOUBLE PRECISION NOT NULL,
	requires_validation  BOOLEAN NOT NULL,
	computed_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS officer_overrides (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id          TEXT NOT NULL,
	rule_id         TEXT NOT NULL,
	original_status TEXT NOT NULL,
	override_status TEXT NOT NULL,
	justification   TEXT NOT NULL,
	officer_id      TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS field_resolutions (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	submission_id      TEXT NOT NULL,
	field_key          TEXT NOT NULL,
	chosen_document_id TEXT NOT NULL,
	officer_id         TEXT NOT NULL,
	notes              TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_submission ON validation_runs(submission_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON validation_runs(status);
CREATE INDEX IF NOT EXISTS idx_changesets_pair ON changesets(parent_submission_id, child_submission_id, computed_at DESC);
CREATE INDEX IF NOT EXISTS idx_overrides_run ON officer_overrides(run_id);
CREATE INDEX IF NOT EXISTS idx_resolutions_submission ON field_resolutions(submission_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.ValidationRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	resultJSON, gateReason, err := marshalRunColumns(run)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO validation_runs (id, submission_id, status, result, gate_triggered, gate_reason, llm_annotation, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.SubmissionID, string(run.Status), resultJSON,
		run.GateTriggered, gateReason, run.LLMAnnotation, run.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert run")
}

// SaveRuns persists a batch of runs in one round trip using COPY.
func (s *PostgresStore) SaveRuns(ctx context.Context, runs []model.ValidationRun) error {
	rows := make([][]any, 0, len(runs))
	for i := range runs {
		run := &runs[i]
		if run.ID == "" {
			run.ID = uuid.New().String()
		}
		if run.CreatedAt.IsZero() {
			run.CreatedAt = time.Now().UTC()
		}
		resultJSON, gateReason, err := marshalRunColumns(run)
		if err != nil {
			return err
		}
		rows = append(rows, []any{
			run.ID, run.SubmissionID, string(run.Status), resultJSON,
			run.GateTriggered, gateReason, run.LLMAnnotation, run.CreatedAt,
		})
	}

	_, err := db.CopyFrom(ctx, s.pool, "validation_runs",
		[]string{"id", "submission_id", "status", "result", "gate_triggered", "gate_reason", "llm_annotation", "created_at"},
		rows,
	)
	return eris.Wrap(err, "postgres: copy runs")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.ValidationRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, submission_id, status, result, gate_triggered, gate_reason, llm_annotation, created_at
		 FROM validation_runs WHERE id = $1`,
		runID,
	)
	run, err := scanPGRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ValidationRun, error) {
	query := `SELECT id, submission_id, status, result, gate_triggered, gate_reason, llm_annotation, created_at
	          FROM validation_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.SubmissionID != "" {
		query += fmt.Sprintf(` AND submission_id = $%d`, argIdx)
		args = append(args, filter.SubmissionID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ValidationRun
	for rows.Next() {
		run, err := scanPGRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveChangeSet(ctx context.Context, cs *model.ChangeSet) error {
	if cs.ID == "" {
		cs.ID = uuid.New().String()
	}
	if cs.ComputedAt.IsZero() {
		cs.ComputedAt = time.Now().UTC()
	}

	itemsJSON, err := json.Marshal(cs.Items)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal changeset items")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO changesets (id, parent_submission_id, child_submission_id, items, significance, requires_validation, computed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cs.ID, cs.ParentSubmissionID, cs.ChildSubmissionID,
		itemsJSON, cs.Significance, cs.RequiresValidation, cs.ComputedAt,
	)
	return eris.Wrap(err, "postgres: insert changeset")
}

func (s *PostgresStore) GetChangeSet(ctx context.Context, parentID, childID string) (*model.ChangeSet, error) {
	var cs model.ChangeSet
	var itemsJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, parent_submission_id, child_submission_id, items, significance, requires_validation, computed_at
		 FROM changesets
		 WHERE parent_submission_id = $1 AND child_submission_id = $2
		 ORDER BY computed_at DESC LIMIT 1`,
		parentID, childID,
	).Scan(&cs.ID, &cs.ParentSubmissionID, &cs.ChildSubmissionID,
		&itemsJSON, &cs.Significance, &cs.RequiresValidation, &cs.ComputedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get changeset")
	}
	if err := json.Unmarshal(itemsJSON, &cs.Items); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal changeset items")
	}
	return &cs, nil
}

func (s *PostgresStore) SaveOverride(ctx context.Context, o *model.OfficerOverride) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO officer_overrides (id, run_id, rule_id, original_status, override_status, justification, officer_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.RunID, o.RuleID, string(o.OriginalStatus), string(o.OverrideStatus),
		o.Justification, o.OfficerID, o.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert override")
}

func (s *PostgresStore) ListOverrides(ctx context.Context, runID string) ([]model.OfficerOverride, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, rule_id, original_status, override_status, justification, officer_id, created_at
		 FROM officer_overrides WHERE run_id = $1
		 ORDER BY created_at DESC, id DESC`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list overrides")
	}
	defer rows.Close()

	var overrides []model.OfficerOverride
	for rows.Next() {
		var o model.OfficerOverride
		if err := rows.Scan(&o.ID, &o.RunID, &o.RuleID, &o.OriginalStatus, &o.OverrideStatus,
			&o.Justification, &o.OfficerID, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan override")
		}
		overrides = append(overrides, o)
	}
	return overrides, eris.Wrap(rows.Err(), "postgres: list overrides iterate")
}

func (s *PostgresStore) SaveResolution(ctx context.Context, r *model.FieldResolution) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO field_resolutions (id, submission_id, field_key, chosen_document_id, officer_id, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.SubmissionID, r.FieldKey, r.ChosenDocumentID, r.OfficerID, r.Notes, r.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert resolution")
}

func (s *PostgresStore) ListResolutions(ctx context.Context, submissionID string) ([]model.FieldResolution, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, submission_id, field_key, chosen_document_id, officer_id, notes, created_at
		 FROM field_resolutions WHERE submission_id = $1
		 ORDER BY created_at DESC, id DESC`,
		submissionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list resolutions")
	}
	defer rows.Close()

	var resolutions []model.FieldResolution
	for rows.Next() {
		var r model.FieldResolution
		if err := rows.Scan(&r.ID, &r.SubmissionID, &r.FieldKey, &r.ChosenDocumentID,
			&r.OfficerID, &r.Notes, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan resolution")
		}
		resolutions = append(resolutions, r)
	}
	return resolutions, eris.Wrap(rows.Err(), "postgres: list resolutions iterate")
}

// helpers

func marshalRunColumns(run *model.ValidationRun) (resultJSON, gateReason []byte, err error) {
	if run.Result != nil {
		resultJSON, err = json.Marshal(run.Result)
		if err != nil {
			return nil, nil, eris.Wrap(err, "postgres: marshal result")
		}
	}
	if len(run.GateReason) > 0 {
		gateReason = run.GateReason
	}
	return resultJSON, gateReason, nil
}

func scanPGRun(row pgx.Row) (*model.ValidationRun, error) {
	var r model.ValidationRun
	var resultJSON, gateReason []byte

	err := row.Scan(&r.ID, &r.SubmissionID, &r.Status, &resultJSON,
		&r.GateTriggered, &gateReason, &r.LLMAnnotation, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	if resultJSON != nil {
		r.Result = &model.ValidationResult{}
		if err := json.Unmarshal(resultJSON, r.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal result")
		}
	}
	r.GateReason = gateReason
	return &r, nil
}
