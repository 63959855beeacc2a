package leads

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo persists leads in the leads table.
//
// Schema expectation:
//   leads(lead_id TEXT PK, workspace_id TEXT NOT NULL, name TEXT, email TEXT,
//         phone TEXT, course_interest TEXT, intake TEXT, source TEXT,
//         status TEXT, score INT, created_at TIMESTAMPTZ, updated_at TIMESTAMPTZ)
type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

func (r *PostgresRepo) Put(ctx context.Context, l Lead) error {
	if l.LeadID == "" || l.WorkspaceID == "" {
		return ErrInvalidLead
	}
	now := r.clock().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (lead_id, workspace_id, name, email, phone, course_interest, intake, source, status, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (lead_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			course_interest = EXCLUDED.course_interest,
			intake = EXCLUDED.intake,
			source = EXCLUDED.source,
			status = EXCLUDED.status,
			score = EXCLUDED.score,
			updated_at = EXCLUDED.updated_at
		WHERE leads.workspace_id = EXCLUDED.workspace_id`,
		l.LeadID, l.WorkspaceID, l.Name, l.Email, l.Phone, l.CourseInterest, l.Intake, l.Source, string(l.Status), l.Score, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, workspaceID, leadID string) (Lead, error) {
	if workspaceID == "" || leadID == "" {
		return Lead{}, ErrInvalidLead
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT lead_id, workspace_id, name, email, phone, course_interest, intake, source, status, score, created_at, updated_at
		FROM leads WHERE workspace_id = $1 AND lead_id = $2`, workspaceID, leadID)

	var l Lead
	var status string
	err := row.Scan(&l.LeadID, &l.WorkspaceID, &l.Name, &l.Email, &l.Phone, &l.CourseInterest, &l.Intake, &l.Source, &status, &l.Score, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	l.Status = LeadStatus(status)
	return l, nil
}

func (r *PostgresRepo) List(ctx context.Context, workspaceID string) ([]Lead, error) {
	if workspaceID == "" {
		return nil, ErrInvalidLead
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT lead_id, workspace_id, name, email, phone, course_interest, intake, source, status, score, created_at, updated_at
		FROM leads WHERE workspace_id = $1 ORDER BY created_at DESC`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Lead, 0)
	for rows.Next() {
		var l Lead
		var status string
		if err := rows.Scan(&l.LeadID, &l.WorkspaceID, &l.Name, &l.Email, &l.Phone, &l.CourseInterest, &l.Intake, &l.Source, &status, &l.Score, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.Status = LeadStatus(status)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateScore(ctx context.Context, workspaceID, leadID string, score int) error {
	if workspaceID == "" || leadID == "" {
		return ErrInvalidLead
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE leads SET score = $3, updated_at = $4
		WHERE workspace_id = $1 AND lead_id = $2`,
		workspaceID, leadID, score, r.clock().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}
