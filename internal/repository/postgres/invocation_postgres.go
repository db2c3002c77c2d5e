package postgres

import (
	"context"
	"database/sql"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

// InvocationPostgres is a PostgreSQL implementation of repository.InvocationRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type InvocationPostgres struct {
	db *sql.DB
}

// NewInvocationPostgres creates a new InvocationPostgres repository.
func NewInvocationPostgres(db *sql.DB) *InvocationPostgres {
	return &InvocationPostgres{db: db}
}

var _ repository.InvocationRepository = (*InvocationPostgres)(nil)

// Create inserts a new invocation row and returns the stored record.
func (r *InvocationPostgres) Create(ctx context.Context, inv *model.Invocation) (*model.Invocation, error) {
	const q = `
		INSERT INTO invocations (id, component, operation, status, digest, payload_bytes, archive_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, component, operation, status, digest, payload_bytes, archive_key, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		inv.ID,
		inv.Component,
		inv.Operation,
		inv.Status,
		inv.Digest,
		inv.PayloadBytes,
		inv.ArchiveKey,
		inv.CreatedAt,
	)
	var out model.Invocation
	if err := row.Scan(
		&out.ID,
		&out.Component,
		&out.Operation,
		&out.Status,
		&out.Digest,
		&out.PayloadBytes,
		&out.ArchiveKey,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single invocation by its ID.
func (r *InvocationPostgres) FindByID(ctx context.Context, id string) (*model.Invocation, error) {
	const q = `
		SELECT id, component, operation, status, digest, payload_bytes, archive_key, created_at
		FROM invocations
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var inv model.Invocation
	if err := row.Scan(
		&inv.ID,
		&inv.Component,
		&inv.Operation,
		&inv.Status,
		&inv.Digest,
		&inv.PayloadBytes,
		&inv.ArchiveKey,
		&inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns invocations using LIMIT/OFFSET pagination and a total count.
func (r *InvocationPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Invocation], error) {
	// Count total rows
	const qCount = `SELECT COUNT(*) FROM invocations`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	const qList = `
		SELECT id, component, operation, status, digest, payload_bytes, archive_key, created_at
		FROM invocations
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Invocation, 0)
	for rows.Next() {
		var inv model.Invocation
		if err := rows.Scan(
			&inv.ID,
			&inv.Component,
			&inv.Operation,
			&inv.Status,
			&inv.Digest,
			&inv.PayloadBytes,
			&inv.ArchiveKey,
			&inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Invocation]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes an invocation by ID. It does not return an error if the row does not exist.
func (r *InvocationPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM invocations WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
