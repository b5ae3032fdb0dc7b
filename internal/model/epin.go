package model

import "time"

// Epin represents a row in the `epins` table: a single sellable prepaid
// code. Once sold the row stays in place with IsSold set, so the code can
// still be looked up through the owning order. IsActive gates visibility in
// the public listings independently of the sold flag.
type Epin struct {
	ID        uint64    // epins.id
	Name      string    // epins.name
	Price     float64   // epins.price
	Code      string    // epins.code
	IsSold    bool      // epins.is_sold
	IsActive  bool      // epins.is_active
	CreatedAt time.Time // epins.created_at
}
