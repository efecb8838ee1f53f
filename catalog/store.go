package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/jsbind/decl"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/pipeline"
)

// Run is one recorded expansion run
type Run struct {
	ID           string    `json:"id" yaml:"id"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	DurationMS   int64     `json:"duration_ms" yaml:"duration_ms"`
	Inputs       []string  `json:"inputs" yaml:"inputs"`
	Files        int       `json:"files" yaml:"files"`
	Declarations int       `json:"declarations" yaml:"declarations"`
	Overloads    int       `json:"overloads" yaml:"overloads"`
	Diagnostics  int       `json:"diagnostics" yaml:"diagnostics"`
}

// Overload is one recorded overload, in expansion order
type Overload struct {
	Seq          int    `json:"seq" yaml:"seq"`
	Owner        string `json:"owner" yaml:"owner"`
	Name         string `json:"name" yaml:"name"`
	OriginalName string `json:"original_name,omitempty" yaml:"original_name,omitempty"`
	Kind         string `json:"kind" yaml:"kind"`
	Signature    string `json:"signature" yaml:"signature"`
}

// Diagnostic is one recorded skipped declaration
type Diagnostic struct {
	File        string `json:"file" yaml:"file"`
	Declaration string `json:"declaration,omitempty" yaml:"declaration,omitempty"`
	Message     string `json:"message" yaml:"message"`
}

// RunDetail is a run with its overloads and diagnostics
type RunDetail struct {
	Run         Run          `json:"run" yaml:"run"`
	Overloads   []Overload   `json:"overloads" yaml:"overloads"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

const (
	insertRun = `INSERT INTO runs (id, started_at, duration_ms, inputs, files, declarations, overloads, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	insertOverload = `INSERT INTO overloads (run_id, seq, owner, name, original_name, kind, signature)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	insertDiagnostic = `INSERT INTO diagnostics (run_id, seq, file, declaration, message) VALUES (?, ?, ?, ?, ?)`
)

// Store reads and writes runs
type Store struct {
	db  *sql.DB
	now func() time.Time
	log *zap.SugaredLogger
}

// NewStore wraps an open, migrated database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now, log: logger.ComponentLogger("catalog")}
}

// trace logs query and its arguments at -vvv
func (s *Store) trace(query string, args ...interface{}) {
	if !logger.ShouldOutput(logger.Verbosity, logger.OutputSQLQueries) {
		return
	}
	s.log.Debugw("SQL", "query", strings.Join(strings.Fields(query), " "), "args", args)
}

// Record stores res in one transaction
func (s *Store) Record(ctx context.Context, res *pipeline.Result, inputs []string) error {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return errors.Wrap(err, "failed to encode inputs")
	}

	files := 0
	var overloads []Overload
	for _, top := range res.Files {
		top.Walk(func(f *decl.File) {
			files++
			for _, list := range [][]*decl.Declaration{f.Members, f.Fields} {
				for _, d := range list {
					overloads = append(overloads, Overload{
						Seq:          len(overloads),
						Owner:        f.QualifiedName(),
						Name:         d.Name,
						OriginalName: d.OriginalName,
						Kind:         string(d.Kind),
						Signature:    d.Signature(),
					})
				}
			}
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	started := s.now().Add(-res.Duration).UTC()
	runArgs := []interface{}{res.RunID, started, res.Duration.Milliseconds(), string(inputsJSON),
		files, res.Declarations, res.Overloads, len(res.Diagnostics)}
	s.trace(insertRun, runArgs...)
	if _, err = tx.ExecContext(ctx, insertRun, runArgs...); err != nil {
		return errors.Wrapf(err, "failed to insert run %s", res.RunID)
	}

	if len(overloads) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertOverload)
		if err != nil {
			return errors.Wrap(err, "failed to prepare overload insert")
		}
		defer stmt.Close()
		for _, o := range overloads {
			s.trace(insertOverload, res.RunID, o.Seq, o.Owner, o.Name)
			if _, err := stmt.ExecContext(ctx, res.RunID, o.Seq, o.Owner, o.Name, o.OriginalName, o.Kind, o.Signature); err != nil {
				return errors.Wrapf(err, "failed to insert overload %s", o.Signature)
			}
		}
	}

	for i, d := range res.Diagnostics {
		s.trace(insertDiagnostic, res.RunID, i, d.File, d.Declaration)
		_, err := tx.ExecContext(ctx, insertDiagnostic, res.RunID, i, d.File, d.Declaration, d.Message())
		if err != nil {
			return errors.Wrap(err, "failed to insert diagnostic")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit run")
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, duration_ms, inputs, files, declarations, overloads, diagnostics
		FROM runs ORDER BY started_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	s.trace(query, args...)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "failed to read runs")
}

// GetRun returns a run with its overloads and diagnostics. id may be a
// unique prefix of the run ID.
func (s *Store) GetRun(ctx context.Context, id string) (*RunDetail, error) {
	const query = `SELECT id, started_at, duration_ms, inputs, files, declarations, overloads, diagnostics
		 FROM runs WHERE id LIKE ? || '%' ORDER BY id LIMIT 2`
	s.trace(query, id)
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query run")
	}
	var matches []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read run")
	}
	switch len(matches) {
	case 0:
		return nil, errors.NewNotFoundError("run %s", id)
	case 2:
		return nil, errors.WithHint(
			errors.Newf("run id prefix %q is ambiguous", id),
			"use more characters of the run id")
	}

	detail := &RunDetail{Run: matches[0]}
	if detail.Overloads, err = s.overloads(ctx, detail.Run.ID); err != nil {
		return nil, err
	}
	if detail.Diagnostics, err = s.diagnostics(ctx, detail.Run.ID); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Store) overloads(ctx context.Context, runID string) ([]Overload, error) {
	const query = `SELECT seq, owner, name, original_name, kind, signature FROM overloads WHERE run_id = ? ORDER BY seq`
	s.trace(query, runID)
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query overloads")
	}
	defer rows.Close()

	var out []Overload
	for rows.Next() {
		var o Overload
		if err := rows.Scan(&o.Seq, &o.Owner, &o.Name, &o.OriginalName, &o.Kind, &o.Signature); err != nil {
			return nil, errors.Wrap(err, "failed to scan overload")
		}
		out = append(out, o)
	}
	return out, errors.Wrap(rows.Err(), "failed to read overloads")
}

func (s *Store) diagnostics(ctx context.Context, runID string) ([]Diagnostic, error) {
	const query = `SELECT file, declaration, message FROM diagnostics WHERE run_id = ? ORDER BY seq`
	s.trace(query, runID)
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query diagnostics")
	}
	defer rows.Close()

	var out []Diagnostic
	for rows.Next() {
		var d Diagnostic
		if err := rows.Scan(&d.File, &d.Declaration, &d.Message); err != nil {
			return nil, errors.Wrap(err, "failed to scan diagnostic")
		}
		out = append(out, d)
	}
	return out, errors.Wrap(rows.Err(), "failed to read diagnostics")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r      Run
		inputs string
	)
	if err := row.Scan(&r.ID, &r.StartedAt, &r.DurationMS, &inputs, &r.Files, &r.Declarations, &r.Overloads, &r.Diagnostics); err != nil {
		return Run{}, errors.Wrap(err, "failed to scan run")
	}
	if err := json.Unmarshal([]byte(inputs), &r.Inputs); err != nil {
		return Run{}, errors.Wrapf(err, "run %s has malformed inputs", r.ID)
	}
	return r, nil
}
