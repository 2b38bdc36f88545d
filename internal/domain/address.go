package domain

import "time"

// Address — адрес доставки. UserID задаётся при создании и больше не меняется.
type Address struct {
	ID         int64
	UserID     int64
	Street     string
	PostalCode string
	City       string
	State      string
	CreatedAt  time.Time
}
