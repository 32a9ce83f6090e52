package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
)

func TestResetRepo_CreateAndRecent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewResetRepo(db)
	ctx := context.Background()

	now := time.Now()
	tok := &model.PasswordResetToken{
		ID:        "01J0000000000000000000000X",
		UserID:    uuid.Must(uuid.NewV4()),
		Email:     "a@x.com",
		CodeHash:  "digest",
		ExpiresAt: now.Add(15 * time.Minute),
		CreatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO password_reset_tokens`).
		WithArgs(tok.ID, tok.UserID, tok.Email, tok.CodeHash, tok.ExpiresAt, tok.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, tok))

	mock.ExpectQuery(`SELECT id, user_id, email, code_hash, expires_at, used_at, created_at`).
		WithArgs("a@x.com", 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "email", "code_hash", "expires_at", "used_at", "created_at"}).
			AddRow(tok.ID, tok.UserID, tok.Email, tok.CodeHash, tok.ExpiresAt, nil, tok.CreatedAt))
	got, err := r.RecentByEmail(ctx, "a@x.com", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].UsedAt)
	require.True(t, got[0].Usable(now))
}

func TestResetRepo_MarkUsed_SingleUse(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewResetRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE password_reset_tokens SET used_at=now\(\) WHERE id=\$1 AND used_at IS NULL`).
		WithArgs("tok-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.MarkUsed(ctx, "tok-1"))

	// Second redemption races to zero affected rows.
	mock.ExpectExec(`UPDATE password_reset_tokens SET used_at=now\(\) WHERE id=\$1 AND used_at IS NULL`).
		WithArgs("tok-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.MarkUsed(ctx, "tok-1"), errs.ErrNotFound)
}
