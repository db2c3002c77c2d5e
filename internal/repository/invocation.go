package repository

import (
	"context"

	"taskapi/internal/model"
)

// InvocationRepository defines data access for invocation records using SQL queries only.
// No business logic here — strictly persistence operations.
type InvocationRepository interface {
	// Create inserts a new invocation record.
	// The caller provides required fields (ID, CreatedAt) according to the schema defaults.
	// Returns the stored record (may include values set by the DB).
	Create(ctx context.Context, inv *model.Invocation) (*model.Invocation, error)

	// FindByID returns an invocation by its ID.
	FindByID(ctx context.Context, id string) (*model.Invocation, error)

	// List returns a paginated list of invocations and total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Invocation], error)

	// Delete removes an invocation by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
