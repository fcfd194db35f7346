package repository

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/book-lending/internal/model"
)

const reservationColumns = "id, book_id, reserved_by, first_name, last_name, address, phone_number, created_at"

// reservationRow is a reservation joined with its book, the book's owner and
// the requester.
type reservationRow struct {
	model.Reservation
	BookName          string `db:"book_name"`
	BookAuthor        string `db:"book_author"`
	BookLocation      string `db:"book_location"`
	BookDescription   string `db:"book_description"`
	BookPhoto         string `db:"book_photo"`
	BookStatus        string `db:"book_status"`
	BookContactPhone  string `db:"book_contact_phone"`
	OwnerID           uint64 `db:"owner_id"`
	OwnerUsername     string `db:"owner_username"`
	OwnerEmail        string `db:"owner_email"`
	RequesterUsername string `db:"requester_username"`
}

func (r reservationRow) book() model.ReservedBook {
	return model.ReservedBook{
		ID:          r.BookID,
		Name:        r.BookName,
		Author:      r.BookAuthor,
		Location:    r.BookLocation,
		Description: r.BookDescription,
		Photo:       r.BookPhoto,
		Status:      r.BookStatus,
		Owner: model.OwnerRef{
			ID:           r.OwnerID,
			Username:     r.OwnerUsername,
			Email:        r.OwnerEmail,
			ContactPhone: r.BookContactPhone,
		},
	}
}

func (r reservationRow) detail() model.ReservationDetail {
	return model.ReservationDetail{
		ID:            r.ID,
		Book:          r.book(),
		ReservedBy:    model.UserRef{ID: r.ReservedBy, Username: r.RequesterUsername},
		CreatedAt:     r.CreatedAt,
		RequesterInfo: r.Requester(),
	}
}

type ReservationRepo struct{ DB *sqlx.DB }

func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// Reserve flips the book from available to reserved and records res in a
// single transaction.  The status change is conditional, so of two
// concurrent callers exactly one succeeds; the other gets ErrUnavailable.
// ErrNotFound is returned when the book does not exist.
func (r *ReservationRepo) Reserve(ctx context.Context, res *model.Reservation) (err error) {
	now := time.Now().UTC()
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	upd, err := tx.ExecContext(ctx,
		"UPDATE books SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		model.BookReserved, now, res.BookID, model.BookAvailable)
	if err != nil {
		return err
	}
	if n, _ := upd.RowsAffected(); n == 0 {
		var count int
		if err = tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM books WHERE id = ?", res.BookID); err != nil {
			return err
		}
		if count == 0 {
			err = ErrNotFound
		} else {
			err = ErrUnavailable
		}
		return err
	}

	query, args, err := dialect(tx).Insert("reservations").Prepared(true).Rows(goqu.Record{
		"book_id":      res.BookID,
		"reserved_by":  res.ReservedBy,
		"first_name":   res.FirstName,
		"last_name":    res.LastName,
		"address":      res.Address,
		"phone_number": res.PhoneNumber,
		"created_at":   now,
	}).ToSQL()
	if err != nil {
		return err
	}
	ins, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	res.ID, res.CreatedAt = uint64(id), now
	return nil
}

// GetByBookID returns the most recent reservation of a book.
func (r *ReservationRepo) GetByBookID(ctx context.Context, bookID uint64) (model.Reservation, error) {
	var res model.Reservation
	err := r.DB.GetContext(ctx, &res,
		"SELECT "+reservationColumns+" FROM reservations WHERE book_id = ? ORDER BY created_at DESC, id DESC LIMIT 1", bookID)
	return res, notFound(err)
}

func (r *ReservationRepo) joined() *goqu.SelectDataset {
	return dialect(r.DB).From(goqu.T("reservations").As("r")).Prepared(true).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("r.book_id")))).
		Join(goqu.T("users").As("o"), goqu.On(goqu.I("o.id").Eq(goqu.I("b.owner_id")))).
		Join(goqu.T("users").As("q"), goqu.On(goqu.I("q.id").Eq(goqu.I("r.reserved_by")))).
		Select(
			goqu.I("r.id"), goqu.I("r.book_id"), goqu.I("r.reserved_by"), goqu.I("r.first_name"),
			goqu.I("r.last_name"), goqu.I("r.address"), goqu.I("r.phone_number"), goqu.I("r.created_at"),
			goqu.I("b.name").As("book_name"), goqu.I("b.author").As("book_author"),
			goqu.I("b.location").As("book_location"), goqu.I("b.description").As("book_description"),
			goqu.I("b.photo").As("book_photo"), goqu.I("b.status").As("book_status"),
			goqu.I("b.contact_phone").As("book_contact_phone"),
			goqu.I("o.id").As("owner_id"), goqu.I("o.username").As("owner_username"),
			goqu.I("o.email").As("owner_email"), goqu.I("q.username").As("requester_username"),
		).
		Order(goqu.I("r.created_at").Desc(), goqu.I("r.id").Desc())
}

func (r *ReservationRepo) selectRows(ctx context.Context, ds *goqu.SelectDataset) ([]reservationRow, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	var rows []reservationRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every reservation with book, owner and requester resolved,
// newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.ReservationDetail, error) {
	rows, err := r.selectRows(ctx, r.joined())
	if err != nil {
		return nil, err
	}
	out := make([]model.ReservationDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.detail())
	}
	return out, nil
}

// GetDetailByBookID returns the most recent reservation of a book with book,
// owner and requester resolved.
func (r *ReservationRepo) GetDetailByBookID(ctx context.Context, bookID uint64) (model.ReservationDetail, error) {
	rows, err := r.selectRows(ctx, r.joined().Where(goqu.I("r.book_id").Eq(bookID)).Limit(1))
	if err != nil {
		return model.ReservationDetail{}, err
	}
	if len(rows) == 0 {
		return model.ReservationDetail{}, ErrNotFound
	}
	return rows[0].detail(), nil
}

// ListByRequester returns the reservations made by userID, newest first.
func (r *ReservationRepo) ListByRequester(ctx context.Context, userID uint64) ([]model.ReservationView, error) {
	rows, err := r.selectRows(ctx, r.joined().Where(goqu.I("r.reserved_by").Eq(userID)))
	if err != nil {
		return nil, err
	}
	out := make([]model.ReservationView, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.ReservationView{
			ID:            row.ID,
			Book:          row.book(),
			ReservedAt:    row.CreatedAt,
			RequesterInfo: row.Requester(),
		})
	}
	return out, nil
}

// ReleaseByRequester returns every book reserved by userID to the available
// state and deletes those reservations.  It reports how many reservations
// were released.
func (r *ReservationRepo) ReleaseByRequester(ctx context.Context, userID uint64) (released int64, err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"UPDATE books SET status = ?, updated_at = ? WHERE id IN (SELECT book_id FROM reservations WHERE reserved_by = ?)",
		model.BookAvailable, time.Now().UTC(), userID); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE reserved_by = ?", userID)
	if err != nil {
		return 0, err
	}
	released, _ = res.RowsAffected()
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return released, nil
}
