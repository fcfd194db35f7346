package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/repository"
)

// CatalogService manages book listings and their photos.
type CatalogService struct {
	Books        BookStore
	Reservations ReservationStore
	Photos       PhotoStore
}

func NewCatalogService(books BookStore, reservations ReservationStore, photos PhotoStore) *CatalogService {
	return &CatalogService{Books: books, Reservations: reservations, Photos: photos}
}

// ListBooks returns the public listing.  Owners are reduced to id and
// username.
func (s *CatalogService) ListBooks(ctx context.Context, f model.BookFilter) ([]model.BookView, error) {
	f.OwnerID = 0
	books, err := s.Books.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range books {
		books[i].Photo = s.Photos.URL(books[i].Photo)
		books[i].Owner.Email = ""
	}
	return books, nil
}

// GetBookDetails returns one book with owner contact and, while reserved,
// the delivery details of the reservation.
func (s *CatalogService) GetBookDetails(ctx context.Context, id uint64) (model.BookDetail, error) {
	v, err := s.Books.GetView(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.BookDetail{}, newError(KindNotFound, MsgBookNotFound)
		}
		return model.BookDetail{}, err
	}
	d := model.BookDetail{
		ID:          v.ID,
		Name:        v.Name,
		Author:      v.Author,
		Location:    v.Location,
		Description: v.Description,
		Photo:       s.Photos.URL(v.Photo),
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
		Owner:       model.OwnerRef{ID: v.OwnerID, Username: v.Owner.Username, ContactPhone: v.ContactPhone},
	}
	if v.Status == model.BookReserved {
		res, err := s.Reservations.GetByBookID(ctx, id)
		switch {
		case err == nil:
			info := res.Requester()
			d.Reservation = &info
		case !errors.Is(err, repository.ErrNotFound):
			return model.BookDetail{}, err
		}
	}
	return d, nil
}

// CreateBook lists a new book owned by the caller.  in.Photo must reference
// an already stored asset; it is removed again when validation fails.
func (s *CatalogService) CreateBook(ctx context.Context, in model.BookInput, owner model.Identity) (model.Book, error) {
	if strings.TrimSpace(in.Photo) == "" {
		return model.Book{}, newError(KindValidation, MsgPhotoRequired)
	}
	b := model.Book{
		OwnerID:      owner.UserID,
		Name:         strings.TrimSpace(in.Name),
		Author:       strings.TrimSpace(in.Author),
		Location:     strings.TrimSpace(in.Location),
		Description:  strings.TrimSpace(in.Description),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		Photo:        in.Photo,
	}
	if !requiredBookFields(b) {
		s.removePhoto(in.Photo)
		return model.Book{}, newError(KindValidation, MsgBookFields)
	}
	if err := s.Books.Create(ctx, &b); err != nil {
		s.removePhoto(in.Photo)
		return model.Book{}, err
	}
	b.Photo = s.Photos.URL(b.Photo)
	return b, nil
}

// UpdateBook applies patch to a book the caller owns (or any book for an
// admin).  A replaced photo is removed before the record is written; a new
// photo that ends up unused is removed again.
func (s *CatalogService) UpdateBook(ctx context.Context, id uint64, patch model.BookPatch, caller model.Identity) (book model.Book, err error) {
	if patch.Photo != nil {
		defer func() {
			if err != nil {
				s.removePhoto(*patch.Photo)
			}
		}()
	}
	b, err := s.authorizedBook(ctx, id, caller)
	if err != nil {
		return model.Book{}, err
	}
	oldPhoto := b.Photo
	apply(&b.Name, patch.Name)
	apply(&b.Author, patch.Author)
	apply(&b.Location, patch.Location)
	apply(&b.Description, patch.Description)
	apply(&b.ContactPhone, patch.ContactPhone)
	if patch.Photo != nil && *patch.Photo != "" {
		b.Photo = *patch.Photo
	}
	if !requiredBookFields(b) {
		return model.Book{}, newError(KindValidation, MsgBookFields)
	}
	if oldPhoto != b.Photo {
		s.removePhoto(oldPhoto)
	}
	if err := s.Books.Update(ctx, &b); err != nil {
		return model.Book{}, err
	}
	b.Photo = s.Photos.URL(b.Photo)
	return b, nil
}

// DeleteBook removes a book the caller owns (or any book for an admin)
// together with its photo and reservations.
func (s *CatalogService) DeleteBook(ctx context.Context, id uint64, caller model.Identity) error {
	b, err := s.authorizedBook(ctx, id, caller)
	if err != nil {
		return err
	}
	return s.deleteCascade(ctx, b)
}

// ListByOwner returns the books listed by ownerID with owner username and
// email resolved.
func (s *CatalogService) ListByOwner(ctx context.Context, ownerID uint64) ([]model.BookView, error) {
	books, err := s.Books.List(ctx, model.BookFilter{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	for i := range books {
		books[i].Photo = s.Photos.URL(books[i].Photo)
	}
	return books, nil
}

// ListReservationsForUser returns the reservations userID has made.
func (s *CatalogService) ListReservationsForUser(ctx context.Context, userID uint64) ([]model.ReservationView, error) {
	out, err := s.Reservations.ListByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Book.Photo = s.Photos.URL(out[i].Book.Photo)
	}
	return out, nil
}

// PurgeOwner deletes every book of ownerID through the same cascade as
// DeleteBook and reports how many were removed.
func (s *CatalogService) PurgeOwner(ctx context.Context, ownerID uint64) (int, error) {
	books, err := s.Books.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range books {
		if err := s.deleteCascade(ctx, b); err != nil {
			if k, ok := KindOf(err); ok && k == KindNotFound {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// deleteCascade is the one path that removes a book: photo first
// (best-effort), then reservations and the row in one transaction.
func (s *CatalogService) deleteCascade(ctx context.Context, b model.Book) error {
	s.removePhoto(b.Photo)
	if err := s.Books.DeleteCascade(ctx, b.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(KindNotFound, MsgBookNotFound)
		}
		return err
	}
	return nil
}

func (s *CatalogService) authorizedBook(ctx context.Context, id uint64, caller model.Identity) (model.Book, error) {
	b, err := s.Books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Book{}, newError(KindNotFound, MsgBookNotFound)
		}
		return model.Book{}, err
	}
	if !caller.CanModify(b.OwnerID) {
		return model.Book{}, newError(KindForbidden, MsgBookForbidden)
	}
	return b, nil
}

func (s *CatalogService) removePhoto(ref string) {
	if ref == "" {
		return
	}
	if err := s.Photos.Remove(ref); err != nil {
		log.Printf("catalog: remove photo %q: %v", ref, err)
	}
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func requiredBookFields(b model.Book) bool {
	return b.Name != "" && b.Author != "" && b.Location != "" && b.ContactPhone != ""
}
