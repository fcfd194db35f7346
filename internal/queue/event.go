// Package queue carries domain events over RabbitMQ: a publisher used by the
// reservation flow and a consumer that appends events to a log file.
package queue

// BookReservedQueue is the durable queue reservation events are sent to.
const BookReservedQueue = "book.reserved"

// BookReservedEvent is published after a reservation commits.  It contains
// enough information for downstream consumers to log or notify without
// querying the primary database.
type BookReservedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	BookID        uint64 `json:"book_id"`
	BookName      string `json:"book_name"`
	OwnerID       uint64 `json:"owner_id"`
	ReservedBy    uint64 `json:"reserved_by"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	ReservedAt    string `json:"reserved_at"`
}
