package callrecords

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"admissions-crm/pkg/utils"
)

// PostgresRepo persists call records in the call_records table.
//
// Scalar columns are kept queryable; structured payloads (notes, disposition,
// recording, insights, compliance, reference scripts) are stored as JSONB.
//
// Schema expectation:
//   call_records(record_id TEXT PK, workspace_id TEXT NOT NULL, lead_id TEXT NOT NULL,
//                session_id TEXT, direction TEXT, started_at TIMESTAMPTZ,
//                saved_at TIMESTAMPTZ, duration_seconds INT, assigned_to TEXT,
//                script_scenario TEXT, script_text TEXT, payload JSONB)
//
// INSERT-only policy; no UPDATE/DELETE statements exist in this repo.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

type recordPayload struct {
	Disposition      *Disposition      `json:"disposition,omitempty"`
	Notes            []Note            `json:"notes,omitempty"`
	Recording        *Recording        `json:"recording,omitempty"`
	Insights         *InsightsSnapshot `json:"insights,omitempty"`
	Compliance       ComplianceFlags   `json:"compliance"`
	ReferenceScripts []string          `json:"reference_scripts,omitempty"`
}

func (r *PostgresRepo) Append(ctx context.Context, rec CallRecord) error {
	payload, err := json.Marshal(recordPayload{
		Disposition:      rec.Disposition,
		Notes:            rec.Notes,
		Recording:        rec.Recording,
		Insights:         rec.Insights,
		Compliance:       rec.Compliance,
		ReferenceScripts: rec.ReferenceScripts,
	})
	if err != nil {
		return err
	}

	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO call_records
				(record_id, workspace_id, lead_id, session_id, direction, started_at, saved_at, duration_seconds, assigned_to, script_scenario, script_text, payload)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			rec.RecordID, rec.WorkspaceID, rec.LeadID, rec.SessionID, string(rec.Direction),
			rec.StartedAt, rec.SavedAt, rec.DurationSeconds, rec.AssignedTo,
			rec.ScriptScenario, rec.ScriptText, payload,
		)
		return err
	})
}

func (r *PostgresRepo) ListByLead(ctx context.Context, workspaceID, leadID string) ([]CallRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT record_id, workspace_id, lead_id, session_id, direction, started_at, saved_at, duration_seconds, assigned_to, script_scenario, script_text, payload
		FROM call_records
		WHERE workspace_id = $1 AND lead_id = $2
		ORDER BY saved_at DESC`, workspaceID, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *PostgresRepo) ListByRange(ctx context.Context, workspaceID string, from, to time.Time) ([]CallRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT record_id, workspace_id, lead_id, session_id, direction, started_at, saved_at, duration_seconds, assigned_to, script_scenario, script_text, payload
		FROM call_records
		WHERE workspace_id = $1 AND saved_at >= $2 AND saved_at < $3
		ORDER BY saved_at DESC`, workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]CallRecord, error) {
	out := make([]CallRecord, 0)
	for rows.Next() {
		var rec CallRecord
		var direction string
		var payload []byte
		if err := rows.Scan(&rec.RecordID, &rec.WorkspaceID, &rec.LeadID, &rec.SessionID,
			&direction, &rec.StartedAt, &rec.SavedAt, &rec.DurationSeconds,
			&rec.AssignedTo, &rec.ScriptScenario, &rec.ScriptText, &payload); err != nil {
			return nil, err
		}
		rec.Direction = Direction(direction)
		var p recordPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		rec.Disposition = p.Disposition
		rec.Notes = p.Notes
		rec.Recording = p.Recording
		rec.Insights = p.Insights
		rec.Compliance = p.Compliance
		rec.ReferenceScripts = p.ReferenceScripts
		out = append(out, rec)
	}
	return out, rows.Err()
}
