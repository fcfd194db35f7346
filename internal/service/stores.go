package service

import (
	"context"
	"time"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/queue"
)

// UserStore is implemented by repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Update(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	List(ctx context.Context, f model.UserFilter) ([]model.User, error)
	Delete(ctx context.Context, id uint64) error
}

// BookStore is implemented by repository.BookRepo.
type BookStore interface {
	Create(ctx context.Context, b *model.Book) error
	GetByID(ctx context.Context, id uint64) (model.Book, error)
	GetView(ctx context.Context, id uint64) (model.BookView, error)
	List(ctx context.Context, f model.BookFilter) ([]model.BookView, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	DeleteCascade(ctx context.Context, id uint64) error
}

// ReservationStore is implemented by repository.ReservationRepo.
type ReservationStore interface {
	Reserve(ctx context.Context, res *model.Reservation) error
	GetByBookID(ctx context.Context, bookID uint64) (model.Reservation, error)
	GetDetailByBookID(ctx context.Context, bookID uint64) (model.ReservationDetail, error)
	ListAll(ctx context.Context) ([]model.ReservationDetail, error)
	ListByRequester(ctx context.Context, userID uint64) ([]model.ReservationView, error)
	ReleaseByRequester(ctx context.Context, userID uint64) (int64, error)
}

// RevocationStore is implemented by repository.TokenRepo and
// repository.RedisRevocations.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, userID uint64, exp time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PhotoStore is the part of storage.DiskStore the services need.
type PhotoStore interface {
	Remove(ref string) error
	URL(ref string) string
}

// EventPublisher is implemented by queue.Publisher and queue.NopPublisher.
type EventPublisher interface {
	PublishBookReserved(ctx context.Context, ev queue.BookReservedEvent) error
}
