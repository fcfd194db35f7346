package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/queue"
	"github.com/iliyamo/book-lending/internal/repository"
)

// ReservationService runs the available -> reserved transition of a book.
type ReservationService struct {
	Reservations ReservationStore
	Books        BookStore
	Photos       PhotoStore
	Events       EventPublisher
	EventTimeout time.Duration

	wg sync.WaitGroup
}

func NewReservationService(reservations ReservationStore, books BookStore, photos PhotoStore, events EventPublisher) *ReservationService {
	return &ReservationService{
		Reservations: reservations,
		Books:        books,
		Photos:       photos,
		Events:       events,
		EventTimeout: 5 * time.Second,
	}
}

// ReserveBook records a reservation for an available book.  The status check
// and the insert happen atomically; a book that is already reserved (or does
// not exist) yields Unavailable and nothing is written.
func (s *ReservationService) ReserveBook(ctx context.Context, bookID uint64, info model.RequesterInfo, requester model.Identity) (model.Reservation, error) {
	info = model.RequesterInfo{
		FirstName:   strings.TrimSpace(info.FirstName),
		LastName:    strings.TrimSpace(info.LastName),
		Address:     strings.TrimSpace(info.Address),
		PhoneNumber: strings.TrimSpace(info.PhoneNumber),
	}
	if !info.Complete() {
		return model.Reservation{}, newError(KindValidation, MsgAllFieldsRequired)
	}
	res := model.Reservation{
		BookID:      bookID,
		ReservedBy:  requester.UserID,
		FirstName:   info.FirstName,
		LastName:    info.LastName,
		Address:     info.Address,
		PhoneNumber: info.PhoneNumber,
	}
	if err := s.Reservations.Reserve(ctx, &res); err != nil {
		if errors.Is(err, repository.ErrUnavailable) || errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, wrapError(KindUnavailable, MsgBookUnavailable, err)
		}
		return model.Reservation{}, err
	}
	s.publish(ctx, res)
	return res, nil
}

// publish sends the book.reserved event in the background.  Failures are
// logged only.
func (s *ReservationService) publish(ctx context.Context, res model.Reservation) {
	if s.Events == nil {
		return
	}
	ev := queue.BookReservedEvent{
		ReservationID: res.ID,
		BookID:        res.BookID,
		ReservedBy:    res.ReservedBy,
		FirstName:     res.FirstName,
		LastName:      res.LastName,
		ReservedAt:    res.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b, err := s.Books.GetByID(ctx, res.BookID); err == nil {
		ev.BookName, ev.OwnerID = b.Name, b.OwnerID
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pctx, cancel := context.WithTimeout(context.Background(), s.EventTimeout)
		defer cancel()
		if err := s.Events.PublishBookReserved(pctx, ev); err != nil {
			log.Printf("reservation: publish book.reserved for reservation %d: %v", ev.ReservationID, err)
		}
	}()
}

// Wait blocks until in-flight event publishes have finished.
func (s *ReservationService) Wait() { s.wg.Wait() }

// GetReservationByBookID returns the reservation of a book with book, owner
// and requester resolved.
func (s *ReservationService) GetReservationByBookID(ctx context.Context, bookID uint64) (model.ReservationDetail, error) {
	d, err := s.Reservations.GetDetailByBookID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ReservationDetail{}, newError(KindNotFound, MsgNoReservationForBook)
		}
		return model.ReservationDetail{}, err
	}
	d.Book.Photo = s.Photos.URL(d.Book.Photo)
	return d, nil
}

// GetAllReservations returns every reservation.  An empty result is reported
// as NotFound.
func (s *ReservationService) GetAllReservations(ctx context.Context) ([]model.ReservationDetail, error) {
	out, err := s.Reservations.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, newError(KindNotFound, MsgNoReservations)
	}
	for i := range out {
		out[i].Book.Photo = s.Photos.URL(out[i].Book.Photo)
	}
	return out, nil
}
