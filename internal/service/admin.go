package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/repository"
)

// ExportSheet is the worksheet the reservation export is written to.
const ExportSheet = "Sheet1"

var exportHeader = []interface{}{
	"Reservation ID", "Book ID", "Book", "Author", "Status", "Owner",
	"Reserved By", "First Name", "Last Name", "Address", "Phone", "Reserved At",
}

// AdminService holds the moderation use cases.  Every method checks the
// caller's role itself.
type AdminService struct {
	Users        UserStore
	Reservations ReservationStore
	Catalog      *CatalogService
	Bookings     *ReservationService
}

func NewAdminService(users UserStore, reservations ReservationStore, catalog *CatalogService, bookings *ReservationService) *AdminService {
	return &AdminService{Users: users, Reservations: reservations, Catalog: catalog, Bookings: bookings}
}

func (s *AdminService) ListUsers(ctx context.Context, caller model.Identity, f model.UserFilter) ([]model.PublicUser, error) {
	if err := requireRole(caller, model.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *AdminService) GetUserByID(ctx context.Context, caller model.Identity, id uint64) (model.PublicUser, error) {
	if err := requireRole(caller, model.RoleAdmin); err != nil {
		return model.PublicUser{}, err
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PublicUser{}, newError(KindNotFound, MsgUserNotFound)
		}
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

// DeleteUser removes an account with everything hanging off it: the books it
// listed (photos and reservations included) go through the catalog cascade,
// books it had reserved become available again, and finally the user row is
// deleted.
func (s *AdminService) DeleteUser(ctx context.Context, caller model.Identity, id uint64) error {
	if err := requireRole(caller, model.RoleAdmin); err != nil {
		return err
	}
	if caller.UserID == id {
		return newError(KindValidation, MsgSelfDelete)
	}
	if _, err := s.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(KindNotFound, MsgUserNotFound)
		}
		return err
	}
	books, err := s.Catalog.PurgeOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("purge books of user %d: %w", id, err)
	}
	released, err := s.Reservations.ReleaseByRequester(ctx, id)
	if err != nil {
		return fmt.Errorf("release reservations of user %d: %w", id, err)
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(KindNotFound, MsgUserNotFound)
		}
		return err
	}
	log.Printf("admin: user %d deleted by %d (books=%d released=%d)", id, caller.UserID, books, released)
	return nil
}

// ListAllReservations is the moderation view of every reservation.
func (s *AdminService) ListAllReservations(ctx context.Context, caller model.Identity) ([]model.ReservationDetail, error) {
	if err := requireRole(caller, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Bookings.GetAllReservations(ctx)
}

// ExportReservations writes every reservation as an xlsx workbook to w.  An
// empty list yields a workbook with only the header row.
func (s *AdminService) ExportReservations(ctx context.Context, caller model.Identity, w io.Writer) error {
	if err := requireRole(caller, model.RoleAdmin); err != nil {
		return err
	}
	list, err := s.Reservations.ListAll(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return err
	}
	for i, r := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID, r.Book.ID, r.Book.Name, r.Book.Author, r.Book.Status, r.Book.Owner.Username,
			r.ReservedBy.Username, r.FirstName, r.LastName, r.Address, r.PhoneNumber,
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return err
		}
	}
	_, err = f.WriteTo(w)
	return err
}
