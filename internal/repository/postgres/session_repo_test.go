package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
)

func TestSessionRepo_CreateAndGet(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	ctx := context.Background()

	now := time.Now()
	s := &model.Session{
		Token:     "deadbeef",
		UserID:    uuid.Must(uuid.NewV4()),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}

	mock.ExpectExec(`INSERT INTO sessions \(token, user_id, temporary, created_at, expires_at\)`).
		WithArgs(s.Token, s.UserID, false, s.CreatedAt, s.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, s))

	mock.ExpectQuery(`SELECT token, user_id, temporary, created_at, expires_at`).
		WithArgs(s.Token).
		WillReturnRows(pgxmock.NewRows([]string{"token", "user_id", "temporary", "created_at", "expires_at"}).
			AddRow(s.Token, s.UserID, false, s.CreatedAt, s.ExpiresAt))
	got, err := r.GetByToken(ctx, s.Token)
	require.NoError(t, err)
	require.Equal(t, s.UserID, got.UserID)

	mock.ExpectQuery(`SELECT token, user_id, temporary, created_at, expires_at`).
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByToken(ctx, "unknown")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSessionRepo_Delete_IsIdempotent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)

	mock.ExpectExec(`DELETE FROM sessions WHERE token=\$1`).
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.NoError(t, r.Delete(context.Background(), "gone"))
}

func TestSessionRepo_DeleteAllForUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)
	uid := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM sessions WHERE user_id=\$1$`).
		WithArgs(uid).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	require.NoError(t, r.DeleteAllForUser(context.Background(), uid, ""))

	mock.ExpectExec(`DELETE FROM sessions WHERE user_id=\$1 AND token<>\$2`).
		WithArgs(uid, "keep").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	require.NoError(t, r.DeleteAllForUser(context.Background(), uid, "keep"))
}

func TestSessionRepo_GetByToken_DBErrorPropagates(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSessionRepo(db)

	mock.ExpectQuery(`SELECT token, user_id, temporary, created_at, expires_at`).
		WithArgs("deadbeef").
		WillReturnError(errors.New("connection refused"))

	_, err := r.GetByToken(context.Background(), "deadbeef")
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}
