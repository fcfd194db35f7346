package repository

import (
	"context"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/book-lending/internal/model"
)

const userColumns = "id, username, email, password_hash, role, created_at, updated_at"

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// NormalizeEmail lower-cases and trims an address before it is stored or
// compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u and fills in its ID and timestamps.  A taken username or
// email yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	query, args, err := dialect(r.DB).Insert("users").Prepared(true).Rows(goqu.Record{
		"username":      u.Username,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"role":          u.Role,
		"created_at":    now,
		"updated_at":    now,
	}).ToSQL()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID, u.CreatedAt, u.UpdatedAt = uint64(id), now, now
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	return u, notFound(err)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", NormalizeEmail(email))
	return u, notFound(err)
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", NormalizeEmail(email))
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM users WHERE username = ?", username)
}

// ExistsByUsernameOrEmail reports whether either identifier is already taken.
func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM users WHERE username = ? OR email = ?", username, NormalizeEmail(email))
}

func (r *UserRepo) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, query, args...); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update persists username, email and role of u.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	u.UpdatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username = ?, email = ?, role = ?, updated_at = ? WHERE id = ?",
		u.Username, u.Email, u.Role, u.UpdatedAt, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports zero affected rows when nothing changed, so confirm
		// the row is really gone before failing.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePassword replaces the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?", hash, time.Now().UTC(), id)
	return err
}

// List returns users matching f ordered by id.
func (r *UserRepo) List(ctx context.Context, f model.UserFilter) ([]model.User, error) {
	ds := dialect(r.DB).From("users").Prepared(true).
		Select("id", "username", "email", "password_hash", "role", "created_at", "updated_at").
		Order(goqu.I("id").Asc())
	if f.Username != "" {
		ds = ds.Where(containsFold("username", f.Username))
	}
	if f.Email != "" {
		ds = ds.Where(containsFold("email", f.Email))
	}
	if f.Role != "" {
		ds = ds.Where(goqu.Ex{"role": f.Role})
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	out := []model.User{}
	if err := r.DB.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the user row.  Dependent books and reservations must be
// gone already.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
