package model

import "time"

// Reservation records that a user claimed a book, together with the contact
// details the owner needs to hand it over.  Rows are never updated; they are
// removed with their book or with the requester's account.
type Reservation struct {
	ID          uint64    `db:"id" json:"id"`                    // reservations.id
	BookID      uint64    `db:"book_id" json:"book"`             // reservations.book_id
	ReservedBy  uint64    `db:"reserved_by" json:"reservedBy"`   // reservations.reserved_by
	FirstName   string    `db:"first_name" json:"firstName"`     // reservations.first_name
	LastName    string    `db:"last_name" json:"lastName"`       // reservations.last_name
	Address     string    `db:"address" json:"address"`          // reservations.address
	PhoneNumber string    `db:"phone_number" json:"phoneNumber"` // reservations.phone_number
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`     // reservations.created_at
}

// RequesterInfo is the delivery contact supplied with a reservation.
type RequesterInfo struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

// Complete reports whether every contact field is non-blank.
func (r RequesterInfo) Complete() bool {
	return notBlank(r.FirstName) && notBlank(r.LastName) && notBlank(r.Address) && notBlank(r.PhoneNumber)
}

// Requester returns the contact part of a reservation.
func (r Reservation) Requester() RequesterInfo {
	return RequesterInfo{FirstName: r.FirstName, LastName: r.LastName, Address: r.Address, PhoneNumber: r.PhoneNumber}
}

// ReservedBook is the book summary embedded in reservation views.
type ReservedBook struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Author      string   `json:"author"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Photo       string   `json:"photo"`
	Status      string   `json:"status"`
	Owner       OwnerRef `json:"owner"`
}

// ReservationView is a reservation as its requester sees it.
type ReservationView struct {
	ID         uint64       `json:"id"`
	Book       ReservedBook `json:"book"`
	ReservedAt time.Time    `json:"reservedAt"`
	RequesterInfo
}

// UserRef is a resolved user reference.
type UserRef struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// ReservationDetail is the owner/moderator view of a reservation.
type ReservationDetail struct {
	ID         uint64       `json:"id"`
	Book       ReservedBook `json:"book"`
	ReservedBy UserRef      `json:"reservedBy"`
	CreatedAt  time.Time    `json:"createdAt"`
	RequesterInfo
}
