package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS validation_runs (
	id             TEXT PRIMARY KEY,
	submission_id  TEXT NOT NULL,
	status         TEXT NOT NULL,
	result         TEXT,
	gate_triggered INTEGER NOT NULL DEFAULT 0,
	gate_reason    TEXT,
	llm_annotation TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS changesets (
	id                   TEXT PRIMARY KEY,
	parent_submission_id TEXT NOT NULL,
	child_submission_id  TEXT NOT NULL,
	items                TEXT NOT NULL,
	significance         REAL NOT NULL,
	requires_validation  INTEGER NOT NULL,
	computed_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS officer_overrides (
	id              TEXT PRIMARY KEY,
	run_id          TEXT NOT NULL,
	rule_id         TEXT NOT NULL,
	original_status TEXT NOT NULL,
	override_status TEXT NOT NULL,
	justification   TEXT NOT NULL,
	officer_id      TEXT NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS field_resolutions (
	id                 TEXT PRIMARY KEY,
	submission_id      TEXT NOT NULL,
	field_key          TEXT NOT NULL,
	chosen_document_id TEXT NOT NULL,
	officer_id         TEXT NOT NULL,
	notes              TEXT NOT NULL DEFAULT '',
	created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_submission ON validation_runs(submission_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON validation_runs(status);
CREATE INDEX IF NOT EXISTS idx_changesets_pair ON changesets(parent_submission_id, child_submission_id);
CREATE INDEX IF NOT EXISTS idx_overrides_run ON officer_overrides(run_id);
CREATE INDEX IF NOT EXISTS idx_resolutions_submission ON field_resolutions(submission_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.ValidationRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	var resultJSON sql.NullString
	if run.Result != nil {
		b, err := json.Marshal(run.Result)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal result")
		}
		resultJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO validation_runs (id, submission_id, status, result, gate_triggered, gate_reason, llm_annotation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SubmissionID, string(run.Status), resultJSON,
		run.GateTriggered, nullableBytes(run.GateReason), run.LLMAnnotation, run.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert run")
}

func (s *SQLiteStore) SaveRuns(ctx context.Context, runs []model.ValidationRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	for i := range runs {
		run := &runs[i]
		if run.ID == "" {
			run.ID = uuid.New().String()
		}
		if run.CreatedAt.IsZero() {
			run.CreatedAt = time.Now().UTC()
		}
		var resultJSON sql.NullString
		if run.Result != nil {
			b, err := json.Marshal(run.Result)
			if err != nil {
				return eris.Wrap(err, "sqlite: marshal result")
			}
			resultJSON = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO validation_runs (id, submission_id, status, result, gate_triggered, gate_reason, llm_annotation, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.SubmissionID, string(run.Status), resultJSON,
			run.GateTriggered, nullableBytes(run.GateReason), run.LLMAnnotation, run.CreatedAt,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit runs")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ValidationRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, submission_id, status, result, gate_triggered, gate_reason, llm_annotation, created_at
		 FROM validation_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ValidationRun, error) {
	query := `SELECT id, submission_id, status, result, gate_triggered, gate_reason, llm_annotation, created_at
	          FROM validation_runs WHERE 1=1`
	var args []any

	if filter.SubmissionID != "" {
		query += ` AND submission_id = ?`
		args = append(args, filter.SubmissionID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ValidationRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveChangeSet(ctx context.Context, cs *model.ChangeSet) error {
	if cs.ID == "" {
		cs.ID = uuid.New().String()
	}
	if cs.ComputedAt.IsZero() {
		cs.ComputedAt = time.Now().UTC()
	}

	itemsJSON, err := json.Marshal(cs.Items)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal changeset items")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO changesets (id, parent_submission_id, child_submission_id, items, significance, requires_validation, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cs.ID, cs.ParentSubmissionID, cs.ChildSubmissionID,
		string(itemsJSON), cs.Significance, cs.RequiresValidation, cs.ComputedAt,
	)
	return eris.Wrap(err, "sqlite: insert changeset")
}

func (s *SQLiteStore) GetChangeSet(ctx context.Context, parentID, childID string) (*model.ChangeSet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, parent_submission_id, child_submission_id, items, significance, requires_validation, computed_at
		 FROM changesets
		 WHERE parent_submission_id = ? AND child_submission_id = ?
		 ORDER BY computed_at DESC LIMIT 1`,
		parentID, childID,
	)

	var cs model.ChangeSet
	var itemsJSON string
	err := row.Scan(&cs.ID, &cs.ParentSubmissionID, &cs.ChildSubmissionID,
		&itemsJSON, &cs.Significance, &cs.RequiresValidation, &cs.ComputedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get changeset")
	}
	if err := json.Unmarshal([]byte(itemsJSON), &cs.Items); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal changeset items")
	}
	return &cs, nil
}

func (s *SQLiteStore) SaveOverride(ctx context.Context, o *model.OfficerOverride) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO officer_overrides (id, run_id, rule_id, original_status, override_status, justification, officer_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.RunID, o.RuleID, string(o.OriginalStatus), string(o.OverrideStatus),
		o.Justification, o.OfficerID, o.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert override")
}

func (s *SQLiteStore) ListOverrides(ctx context.Context, runID string) ([]model.OfficerOverride, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, rule_id, original_status, override_status, justification, officer_id, created_at
		 FROM officer_overrides WHERE run_id = ?
		 ORDER BY created_at DESC, id DESC`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list overrides")
	}
	defer rows.Close()

	var overrides []model.OfficerOverride
	for rows.Next() {
		var o model.OfficerOverride
		if err := rows.Scan(&o.ID, &o.RunID, &o.RuleID, &o.OriginalStatus, &o.OverrideStatus,
			&o.Justification, &o.OfficerID, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan override")
		}
		overrides = append(overrides, o)
	}
	return overrides, eris.Wrap(rows.Err(), "sqlite: list overrides iterate")
}

func (s *SQLiteStore) SaveResolution(ctx context.Context, r *model.FieldResolution) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO field_resolutions (id, submission_id, field_key, chosen_document_id, officer_id, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SubmissionID, r.FieldKey, r.ChosenDocumentID, r.OfficerID, r.Notes, r.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert resolution")
}

func (s *SQLiteStore) ListResolutions(ctx context.Context, submissionID string) ([]model.FieldResolution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, submission_id, field_key, chosen_document_id, officer_id, notes, created_at
		 FROM field_resolutions WHERE submission_id = ?
		 ORDER BY created_at DESC, id DESC`,
		submissionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list resolutions")
	}
	defer rows.Close()

	var resolutions []model.FieldResolution
	for rows.Next() {
		var r model.FieldResolution
		if err := rows.Scan(&r.ID, &r.SubmissionID, &r.FieldKey, &r.ChosenDocumentID,
			&r.OfficerID, &r.Notes, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan resolution")
		}
		resolutions = append(resolutions, r)
	}
	return resolutions, eris.Wrap(rows.Err(), "sqlite: list resolutions iterate")
}

// helpers

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.ValidationRun, error) {
	var r model.ValidationRun
	var resultJSON, gateReason sql.NullString

	err := row.Scan(&r.ID, &r.SubmissionID, &r.Status, &resultJSON,
		&r.GateTriggered, &gateReason, &r.LLMAnnotation, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if resultJSON.Valid {
		r.Result = &model.ValidationResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	if gateReason.Valid {
		r.GateReason = []byte(gateReason.String)
	}
	return &r, nil
}
