package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"coglab/domain/core"
	"coglab/domain/trial"
)

const outcomeSchema = `
CREATE TABLE IF NOT EXISTS trial_outcomes (
	run_id      TEXT    NOT NULL,
	trial_id    TEXT    NOT NULL,
	trial_index INTEGER NOT NULL,
	condition   TEXT    NOT NULL,
	response    TEXT    NOT NULL,
	correct     BOOLEAN NOT NULL,
	latency_ms  BIGINT  NOT NULL,
	recorded_at TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, trial_index)
)`

// OutcomeRepository persists trial outcomes through sqlx. Queries are
// written with ? placeholders and rebound per driver, so the same
// repository serves both the postgres and sqlite backends.
type OutcomeRepository struct {
	db *sqlx.DB
}

// NewOutcomeRepository creates the repository and ensures the schema
// exists.
func NewOutcomeRepository(db *sqlx.DB) (*OutcomeRepository, error) {
	if _, err := db.Exec(outcomeSchema); err != nil {
		return nil, fmt.Errorf("failed to create trial_outcomes schema: %w", err)
	}
	return &OutcomeRepository{db: db}, nil
}

// Record inserts one outcome row.
func (r *OutcomeRepository) Record(ctx context.Context, o trial.TrialOutcome) error {
	query := r.db.Rebind(`
		INSERT INTO trial_outcomes (run_id, trial_id, trial_index, condition, response, correct, latency_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		o.RunID.String(), o.TrialID.String(), o.Index, string(o.Condition),
		o.Response, o.Correct, int64(o.LatencyMS), o.RecordedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to record outcome for run %s trial %d: %w", o.RunID, o.Index, err)
	}
	return nil
}

// ListByRun returns all outcomes for a run ordered by trial index.
func (r *OutcomeRepository) ListByRun(ctx context.Context, runID core.RunID) ([]trial.TrialOutcome, error) {
	type row struct {
		RunID      string    `db:"run_id"`
		TrialID    string    `db:"trial_id"`
		Index      int       `db:"trial_index"`
		Condition  string    `db:"condition"`
		Response   string    `db:"response"`
		Correct    bool      `db:"correct"`
		LatencyMS  int64     `db:"latency_ms"`
		RecordedAt time.Time `db:"recorded_at"`
	}

	query := r.db.Rebind(`
		SELECT run_id, trial_id, trial_index, condition, response, correct, latency_ms, recorded_at
		FROM trial_outcomes
		WHERE run_id = ?
		ORDER BY trial_index
	`)
	rows, err := r.db.QueryxContext(ctx, query, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes for run %s: %w", runID, err)
	}
	defer rows.Close()

	var outcomes []trial.TrialOutcome
	for rows.Next() {
		var rec row
		if err := rows.StructScan(&rec); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, trial.TrialOutcome{
			RunID:      core.RunID(rec.RunID),
			TrialID:    core.TrialID(rec.TrialID),
			Index:      rec.Index,
			Condition:  trial.Condition(rec.Condition),
			Response:   rec.Response,
			Correct:    rec.Correct,
			LatencyMS:  core.Millis(rec.LatencyMS),
			RecordedAt: core.NewTimestamp(rec.RecordedAt),
		})
	}
	return outcomes, rows.Err()
}
