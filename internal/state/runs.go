package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"crewforge/pkg/models"
)

// Run is one persisted kickoff.
type Run struct {
	ID          string
	Crew        string
	Process     string
	Model       string
	Inputs      map[string]string
	Status      string
	TokensIn    int64
	TokensOut   int64
	Cost        float64
	FinalOutput string
	ArtifactDir string
	StartedAt   time.Time
	EndedAt     *time.Time
}

// TaskRun is one persisted task execution within a run.
type TaskRun struct {
	RunID      string
	Task       string
	Agent      string
	Status     models.TaskStatus
	Error      string
	OutputPath string
	TokensIn   int64
	TokensOut  int64
	ToolCalls  int
	Iterations int
	Duration   time.Duration
}

// RecordRunStart inserts a new run in running state.
func (db *DB) RecordRunStart(runID, crewName, process, model string, inputs map[string]string, artifactDir string, startedAt time.Time) error {
	encoded, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO runs (id, crew, process, model, inputs, status, artifact_dir, started_at)
		VALUES (?, ?, ?, ?, ?, 'running', ?, ?)
	`, runID, crewName, process, model, string(encoded), artifactDir, formatTime(startedAt))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordTaskRun inserts one task outcome for a run.
func (db *DB) RecordTaskRun(runID string, result *models.TaskResult, status models.TaskStatus, errMsg string) error {
	_, err := db.Exec(`
		INSERT INTO task_runs (run_id, task, agent, status, error, output_path, tokens_in, tokens_out, tool_calls, iterations, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, result.Task, result.Agent, string(status), errMsg, result.OutputPath,
		result.TokensIn, result.TokensOut, result.ToolCalls, result.Iterations,
		result.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert task run: %w", err)
	}
	return nil
}

// RecordRunEnd finalizes a run with its status and totals.
func (db *DB) RecordRunEnd(runID, status string, tokensIn, tokensOut int64, cost float64, finalOutput string, endedAt time.Time) error {
	result, err := db.Exec(`
		UPDATE runs
		SET status = ?, tokens_in = ?, tokens_out = ?, cost = ?, final_output = ?, ended_at = ?
		WHERE id = ?
	`, status, tokensIn, tokensOut, cost, finalOutput, formatTime(endedAt), runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// GetRun returns a single run by ID.
func (db *DB) GetRun(runID string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, crew, process, model, inputs, status, tokens_in, tokens_out, cost,
		       COALESCE(final_output, ''), artifact_dir, started_at, ended_at
		FROM runs WHERE id = ?
	`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT id, crew, process, model, inputs, status, tokens_in, tokens_out, cost,
		       COALESCE(final_output, ''), artifact_dir, started_at, ended_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// TaskRunsFor returns the task records of a run in execution order.
func (db *DB) TaskRunsFor(runID string) ([]*TaskRun, error) {
	rows, err := db.Query(`
		SELECT run_id, task, agent, status, COALESCE(error, ''), COALESCE(output_path, ''),
		       tokens_in, tokens_out, tool_calls, iterations, duration_ms
		FROM task_runs WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list task runs: %w", err)
	}
	defer rows.Close()

	var taskRuns []*TaskRun
	for rows.Next() {
		var tr TaskRun
		var status string
		var durationMs int64
		if err := rows.Scan(&tr.RunID, &tr.Task, &tr.Agent, &status, &tr.Error, &tr.OutputPath,
			&tr.TokensIn, &tr.TokensOut, &tr.ToolCalls, &tr.Iterations, &durationMs); err != nil {
			return nil, fmt.Errorf("scan task run: %w", err)
		}
		tr.Status = models.TaskStatus(status)
		tr.Duration = time.Duration(durationMs) * time.Millisecond
		taskRuns = append(taskRuns, &tr)
	}
	return taskRuns, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var inputs, startedAt string
	var endedAt sql.NullString

	if err := s.Scan(&run.ID, &run.Crew, &run.Process, &run.Model, &inputs, &run.Status,
		&run.TokensIn, &run.TokensOut, &run.Cost, &run.FinalOutput, &run.ArtifactDir,
		&startedAt, &endedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(inputs), &run.Inputs); err != nil {
		return nil, fmt.Errorf("decoding inputs: %w", err)
	}

	started, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	run.StartedAt = started
	run.EndedAt = parseNullableTime(endedAt)

	return &run, nil
}
