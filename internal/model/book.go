package model

import "time"

// Book statuses.  A book moves from available to reserved exactly once; it
// only becomes available again when the reservation holder's account is
// removed.
const (
	BookAvailable = "available"
	BookReserved  = "reserved"
)

// Book represents a listed book as stored in the `books` table.
//
// Fields:
//  Photo   – stored asset reference (e.g. "uploads/1700000000-x.jpg");
//            services rewrite it to an absolute URL before returning it.
//  OwnerID – user that listed the book; never changes after creation.
type Book struct {
	ID           uint64    `db:"id" json:"id"`
	OwnerID      uint64    `db:"owner_id" json:"ownerId"`
	Name         string    `db:"name" json:"name"`
	Author       string    `db:"author" json:"author"`
	Location     string    `db:"location" json:"location"`
	Description  string    `db:"description" json:"description"`
	ContactPhone string    `db:"contact_phone" json:"contactPhone"`
	Photo        string    `db:"photo" json:"photo"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// OwnerRef is the resolved owner attached to listings and details.
type OwnerRef struct {
	ID           uint64 `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
}

// BookView is a listing entry: the book with its owner resolved.
type BookView struct {
	Book
	Owner OwnerRef `json:"owner"`
}

// BookDetail is the single book page.  Reservation is only present while the
// book is reserved.
type BookDetail struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Author      string         `json:"author"`
	Location    string         `json:"location"`
	Description string         `json:"description"`
	Photo       string         `json:"photo"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	Owner       OwnerRef       `json:"owner"`
	Reservation *RequesterInfo `json:"reservation"`
}

// BookFilter narrows a listing.  Name and Author are case-insensitive
// substrings; zero values mean unfiltered.
type BookFilter struct {
	Name    string
	Author  string
	OwnerID uint64
}

// BookInput carries the fields of a new listing.  Photo must already point
// at a stored asset.
type BookInput struct {
	Name         string
	Author       string
	Location     string
	Description  string
	ContactPhone string
	Photo        string
}

// BookPatch carries a partial update; nil fields are left unchanged.
type BookPatch struct {
	Name         *string
	Author       *string
	Location     *string
	Description  *string
	ContactPhone *string
	Photo        *string
}
