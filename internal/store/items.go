package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const itemColumns = `id, title, description, category_id, user_id`

func (s *Store) CreateItem(ctx context.Context, it *Item) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO category_items (title, description, category_id, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, it.Title, it.Description, it.CategoryID, it.UserID).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("store: insert item: %w", err)
	}
	return nil
}

func (s *Store) ItemByID(ctx context.Context, id int64) (*Item, error) {
	return scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM category_items WHERE id = $1
	`, id))
}

// ItemByTitle looks an item up by title within one category.
func (s *Store) ItemByTitle(ctx context.Context, categoryID int64, title string) (*Item, error) {
	return scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM category_items
		WHERE category_id = $1 AND title = $2
		ORDER BY id LIMIT 1
	`, categoryID, title))
}

func (s *Store) ListItems(ctx context.Context) ([]Item, error) {
	return s.queryItems(ctx, `
		SELECT `+itemColumns+` FROM category_items ORDER BY id
	`)
}

func (s *Store) ItemsByCategory(ctx context.Context, categoryID int64) ([]Item, error) {
	return s.queryItems(ctx, `
		SELECT `+itemColumns+` FROM category_items WHERE category_id = $1 ORDER BY id
	`, categoryID)
}

// LatestItems returns up to limit items, newest first, with their category name.
func (s *Store) LatestItems(ctx context.Context, limit int) ([]LatestItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.title, i.description, i.category_id, i.user_id, c.name
		FROM category_items i
		JOIN categories c ON c.id = i.category_id
		ORDER BY i.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: latest items: %w", err)
	}
	defer rows.Close()

	items := []LatestItem{}
	for rows.Next() {
		var it LatestItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &it.CategoryID, &it.UserID, &it.CategoryName); err != nil {
			return nil, fmt.Errorf("store: scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: latest items: %w", err)
	}

	return items, nil
}

// ItemTitleTaken reports whether another item (id != excludeID) in the
// category already uses title.
func (s *Store) ItemTitleTaken(ctx context.Context, categoryID int64, title string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM category_items
			WHERE category_id = $1 AND title = $2 AND id <> $3
		)
	`, categoryID, title, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: check item title: %w", err)
	}
	return exists, nil
}

func (s *Store) UpdateItem(ctx context.Context, it *Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE category_items
		SET title = $1, description = $2, category_id = $3
		WHERE id = $4
	`, it.Title, it.Description, it.CategoryID, it.ID)
	if err != nil {
		return fmt.Errorf("store: update item: %w", err)
	}
	return expectOne(res)
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM category_items WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("store: delete item: %w", err)
	}
	return expectOne(res)
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &it.CategoryID, &it.UserID); err != nil {
			return nil, fmt.Errorf("store: scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list items: %w", err)
	}

	return items, nil
}

func scanItem(row *sql.Row) (*Item, error) {
	var it Item
	if err := row.Scan(&it.ID, &it.Title, &it.Description, &it.CategoryID, &it.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan item: %w", err)
	}
	return &it, nil
}
