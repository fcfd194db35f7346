package repository

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/book-lending/internal/model"
)

const bookColumns = "id, owner_id, name, author, location, description, contact_phone, photo, status, created_at, updated_at"

// bookRow is a book joined with its owner.
type bookRow struct {
	model.Book
	OwnerUsername string `db:"owner_username"`
	OwnerEmail    string `db:"owner_email"`
}

func (r bookRow) view() model.BookView {
	return model.BookView{
		Book:  r.Book,
		Owner: model.OwnerRef{ID: r.OwnerID, Username: r.OwnerUsername, Email: r.OwnerEmail},
	}
}

type BookRepo struct{ DB *sqlx.DB }

func NewBookRepo(db *sqlx.DB) *BookRepo { return &BookRepo{DB: db} }

// Create inserts b as an available book and fills in its ID and timestamps.
func (r *BookRepo) Create(ctx context.Context, b *model.Book) error {
	now := time.Now().UTC()
	b.Status = model.BookAvailable
	query, args, err := dialect(r.DB).Insert("books").Prepared(true).Rows(goqu.Record{
		"owner_id":      b.OwnerID,
		"name":          b.Name,
		"author":        b.Author,
		"location":      b.Location,
		"description":   b.Description,
		"contact_phone": b.ContactPhone,
		"photo":         b.Photo,
		"status":        b.Status,
		"created_at":    now,
		"updated_at":    now,
	}).ToSQL()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID, b.CreatedAt, b.UpdatedAt = uint64(id), now, now
	return nil
}

// GetByID fetches a bare book row.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (model.Book, error) {
	var b model.Book
	err := r.DB.GetContext(ctx, &b, "SELECT "+bookColumns+" FROM books WHERE id = ? LIMIT 1", id)
	return b, notFound(err)
}

func (r *BookRepo) joined() *goqu.SelectDataset {
	return dialect(r.DB).From(goqu.T("books").As("b")).Prepared(true).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.owner_id")))).
		Select(
			goqu.I("b.id"), goqu.I("b.owner_id"), goqu.I("b.name"), goqu.I("b.author"),
			goqu.I("b.location"), goqu.I("b.description"), goqu.I("b.contact_phone"),
			goqu.I("b.photo"), goqu.I("b.status"), goqu.I("b.created_at"), goqu.I("b.updated_at"),
			goqu.I("u.username").As("owner_username"), goqu.I("u.email").As("owner_email"),
		)
}

// GetView fetches a book with its owner resolved.
func (r *BookRepo) GetView(ctx context.Context, id uint64) (model.BookView, error) {
	query, args, err := r.joined().Where(goqu.I("b.id").Eq(id)).Limit(1).ToSQL()
	if err != nil {
		return model.BookView{}, err
	}
	var row bookRow
	if err := r.DB.GetContext(ctx, &row, query, args...); err != nil {
		return model.BookView{}, notFound(err)
	}
	return row.view(), nil
}

// List returns every book matching f, newest first.
func (r *BookRepo) List(ctx context.Context, f model.BookFilter) ([]model.BookView, error) {
	ds := r.joined().Order(goqu.I("b.created_at").Desc(), goqu.I("b.id").Desc())
	if f.Name != "" {
		ds = ds.Where(containsFold("b.name", f.Name))
	}
	if f.Author != "" {
		ds = ds.Where(containsFold("b.author", f.Author))
	}
	if f.OwnerID != 0 {
		ds = ds.Where(goqu.I("b.owner_id").Eq(f.OwnerID))
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	var rows []bookRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.BookView, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.view())
	}
	return out, nil
}

// ListByOwner returns the books listed by ownerID, newest first.
func (r *BookRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Book, error) {
	out := []model.Book{}
	err := r.DB.SelectContext(ctx, &out,
		"SELECT "+bookColumns+" FROM books WHERE owner_id = ? ORDER BY created_at DESC, id DESC", ownerID)
	return out, err
}

// Update persists the editable fields of b.  Status and owner are not
// touched here.
func (r *BookRepo) Update(ctx context.Context, b *model.Book) error {
	b.UpdatedAt = time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		`UPDATE books SET name = ?, author = ?, location = ?, description = ?, contact_phone = ?, photo = ?, updated_at = ?
		 WHERE id = ?`,
		b.Name, b.Author, b.Location, b.Description, b.ContactPhone, b.Photo, b.UpdatedAt, b.ID)
	return err
}

// DeleteCascade removes a book together with its reservations in one
// transaction.
func (r *BookRepo) DeleteCascade(ctx context.Context, id uint64) (err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM reservations WHERE book_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrNotFound
		return err
	}
	return tx.Commit()
}
