package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"taskapi/internal/model"
	"taskapi/internal/repository"
)

var invColumns = []string{"id", "component", "operation", "status", "digest", "payload_bytes", "archive_key", "created_at"}

func TestInvocationPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewInvocationPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	inv := &model.Invocation{
		ID:           "test-uuid",
		Component:    "data-processor",
		Operation:    "hash",
		Status:       "ok",
		Digest:       "abcd1234",
		PayloadBytes: 42,
		ArchiveKey:   "invocations/test-uuid.msgpack",
		CreatedAt:    now,
	}

	rows := sqlmock.NewRows(invColumns).
		AddRow(inv.ID, inv.Component, inv.Operation, inv.Status, inv.Digest, inv.PayloadBytes, inv.ArchiveKey, inv.CreatedAt)

	mock.ExpectQuery("INSERT INTO invocations").
		WithArgs(inv.ID, inv.Component, inv.Operation, inv.Status, inv.Digest, inv.PayloadBytes, inv.ArchiveKey, inv.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, inv)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, inv.ID, result.ID)
	assert.Equal(t, inv.Digest, result.Digest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvocationPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewInvocationPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(invColumns).
			AddRow("test-id", "analyzer", "analyze", "ok", "digest", 10, "invocations/test-id.msgpack", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM invocations WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		inv, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, inv)
		assert.Equal(t, "test-id", inv.ID)
		assert.Equal(t, "analyzer", inv.Component)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM invocations WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		inv, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, inv)
	})
}

func TestInvocationPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewInvocationPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM invocations").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(invColumns).
			AddRow("test-id", "deployer", "deploy", "ok", "digest", 5, "invocations/test-id.msgpack", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM invocations ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM invocations").
			WillReturnError(errors.New("db fail"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.Error(t, err)
		assert.Nil(t, res)
	})
}

func TestInvocationPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewInvocationPostgres(db)
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM invocations WHERE id = ?").
			WithArgs("test-id").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "test-id"))
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM invocations WHERE id = ?").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, "missing"))
	})

	t.Run("exec error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM invocations WHERE id = ?").
			WithArgs("boom").
			WillReturnError(errors.New("db fail"))

		assert.Error(t, repo.Delete(ctx, "boom"))
	})
}
