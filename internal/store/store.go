// Package store persists users, categories and catalog items.
//
// A Store is bound to a db.DBTX, so the same methods run against the pool or
// inside a transaction opened with db.WithTx.
package store

import (
	"errors"

	"catalog-service/internal/db"
)

var ErrNotFound = errors.New("store: not found")

type Store struct {
	db db.DBTX
}

func New(q db.DBTX) *Store {
	return &Store{db: q}
}

// User is a locally known person. Rows are only created by identity resolution.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID int64  `json:"user_id"`
}

// Item is a catalog item. UserID is its creator, which need not own the category.
type Item struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  int64  `json:"category_id"`
	UserID      int64  `json:"user_id"`
}

// LatestItem is an item together with the name of its category.
type LatestItem struct {
	Item
	CategoryName string `json:"-"`
}
