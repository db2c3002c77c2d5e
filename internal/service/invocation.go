package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskapi/internal/archive"
	"taskapi/internal/envelope"
	"taskapi/internal/model"
	"taskapi/internal/registry"
	"taskapi/internal/repository"
	"taskapi/internal/storage"
	"taskapi/internal/unit"
)

var (
	ErrComponentRequired = errors.New("component is required")
	ErrOperationRequired = errors.New("operation is required")
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("invocation not found")
	ErrPayloadInvalid    = errors.New("payload is not processable")
)

const archiveContentType = "application/msgpack"

// InvokeResult pairs the stored invocation record with the response envelope
// produced by the operation.
type InvokeResult struct {
	Invocation model.Invocation  `json:"invocation"`
	Result     envelope.Envelope `json:"result"`
}

// InvocationListResult is the service-level DTO for paginated invocations.
type InvocationListResult struct {
	Items []model.Invocation `json:"data"`
	Total int                `json:"total"`
}

// InvocationService defines the use cases for invoking components and
// managing the resulting records.
type InvocationService interface {
	// Invoke runs an operation of a registered component against payload,
	// archives a snapshot to object storage, saves the record to the DB, and
	// rolls back storage if the DB save fails.
	Invoke(ctx context.Context, component, operation string, payload any) (*InvokeResult, error)

	// List returns invocations using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*InvocationListResult, error)

	// Get returns a single invocation by its ID.
	Get(ctx context.Context, id string) (*model.Invocation, error)

	// ArchiveURL returns a presigned download URL for an invocation's archived snapshot.
	ArchiveURL(ctx context.Context, id string) (string, error)

	// Delete removes an invocation by ID from both storage and repository.
	Delete(ctx context.Context, id string) error
}

// invocationService is a concrete implementation of InvocationService.
type invocationService struct {
	reg           *registry.Registry
	store         storage.Storage
	repo          repository.InvocationRepository
	clock         envelope.Clock
	presignExpiry time.Duration
}

// NewInvocationService constructs a new InvocationService.
func NewInvocationService(reg *registry.Registry, store storage.Storage, repo repository.InvocationRepository, clock envelope.Clock, presignExpiry time.Duration) InvocationService {
	if clock == nil {
		clock = envelope.SystemClock{}
	}
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &invocationService{
		reg:           reg,
		store:         store,
		repo:          repo,
		clock:         clock,
		presignExpiry: presignExpiry,
	}
}

func (s *invocationService) Invoke(ctx context.Context, component, operation string, payload any) (*InvokeResult, error) {
	if component == "" {
		return nil, ErrComponentRequired
	}
	if operation == "" {
		return nil, ErrOperationRequired
	}

	u, _, err := s.reg.Get(component)
	if err != nil {
		return nil, err
	}

	out, err := u.Invoke(operation, payload)
	if err != nil {
		if errors.Is(err, unit.ErrUnknownOperation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}

	// The envelope itself never fails; only payload accounting can.
	env := envelope.New(s.clock, out)
	canonical, err := unit.CanonicalBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}

	id := uuid.New().String()
	key := "invocations/" + id + ".msgpack"

	snapshot, err := archive.Encode(&archive.Record{
		ID:         id,
		Component:  component,
		Operation:  operation,
		Payload:    payload,
		Result:     env,
		ArchivedAt: s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}

	_, err = s.store.Put(ctx, key, bytes.NewReader(snapshot), storage.PutObjectOptions{
		Size:        int64(len(snapshot)),
		ContentType: archiveContentType,
		Metadata: map[string]string{
			"component": component,
			"operation": operation,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	inv := &model.Invocation{
		ID:           id,
		Component:    component,
		Operation:    operation,
		Status:       env.Status,
		Digest:       unit.DigestBytes(canonical),
		PayloadBytes: int64(len(canonical)),
		ArchiveKey:   key,
		CreatedAt:    s.clock.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, inv)
	if err != nil {
		// Rollback: delete the snapshot from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	return &InvokeResult{Invocation: *stored, Result: env}, nil
}

// List returns paginated invocations without exposing repository types.
func (s *invocationService) List(ctx context.Context, limit, offset int) (*InvocationListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &InvocationListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns an invocation by ID.
func (s *invocationService) Get(ctx context.Context, id string) (*model.Invocation, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// ArchiveURL returns a presigned GET URL for the archived snapshot.
func (s *invocationService) ArchiveURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	url, err := s.store.PresignGet(ctx, inv.ArchiveKey, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign archive: %w", err)
	}
	return url, nil
}

// Delete removes an invocation's snapshot from storage, then deletes its record.
func (s *invocationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	// Find the invocation to get its archive key
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete from storage first; if this fails, keep the DB row so the
	// snapshot reference is not lost.
	if err := s.store.Delete(ctx, inv.ArchiveKey); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	// Delete DB row (repository ignores missing row errors as per contract)
	return s.repo.Delete(ctx, id)
}
