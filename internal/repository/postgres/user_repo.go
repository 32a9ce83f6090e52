package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
)

// roleBootstrapLockID serializes first-user-admin and admin-recovery checks
// so two concurrent signups can never both observe an empty user table.
const roleBootstrapLockID = int64(0x73636d_61757468) // "scm auth"

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user. Role assignment and the insert happen in one
// transaction under an advisory lock: the first user ever becomes admin.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, roleBootstrapLockID); err != nil {
		return err
	}

	var hasUsers bool
	if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&hasUsers); err != nil {
		return err
	}
	role := model.RoleUser
	if !hasUsers {
		role = model.RoleAdmin
	}

	const ins = `
INSERT INTO users (id, email, name, role)
VALUES ($1, $2, $3, $4)
RETURNING created_at`
	if err = tx.QueryRow(ctx, ins, u.ID, u.Email, u.Name, string(role)).Scan(&u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}
	u.Role = role
	return nil
}

// GetByID selects a live user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
SELECT id, email, name, role, created_at, deleted_at
FROM users WHERE id=$1 AND deleted_at IS NULL`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects a live user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
SELECT id, email, name, role, created_at, deleted_at
FROM users WHERE email=$1 AND deleted_at IS NULL`
	return r.scanUser(r.db.Pool.QueryRow(ctx, q, email))
}

func (r *UserRepo) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.CreatedAt, &u.DeletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// PromoteIfNoAdmin grants admin to the user iff no admin exists anywhere,
// under the same advisory lock as Create so the grant happens at most once.
func (r *UserRepo) PromoteIfNoAdmin(ctx context.Context, id uuid.UUID) (promoted bool, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, roleBootstrapLockID); err != nil {
		return false, err
	}

	var hasAdmin bool
	const check = `
SELECT EXISTS (SELECT 1 FROM users WHERE role IN ('admin','superadmin') AND deleted_at IS NULL)`
	if err = tx.QueryRow(ctx, check).Scan(&hasAdmin); err != nil {
		return false, err
	}
	if hasAdmin {
		return false, nil
	}

	tag, err := tx.Exec(ctx, `UPDATE users SET role='admin' WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, errs.ErrNotFound
	}
	return true, nil
}
