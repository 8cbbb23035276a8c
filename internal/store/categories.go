package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *Store) CreateCategory(ctx context.Context, c *Category) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, user_id)
		VALUES ($1, $2)
		RETURNING id
	`, c.Name, c.UserID).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("store: insert category: %w", err)
	}
	return nil
}

func (s *Store) CategoryByID(ctx context.Context, id int64) (*Category, error) {
	return scanCategory(s.db.QueryRowContext(ctx, `
		SELECT id, name, user_id FROM categories WHERE id = $1
	`, id))
}

// CategoryByName returns the oldest category with the given name.
func (s *Store) CategoryByName(ctx context.Context, name string) (*Category, error) {
	return scanCategory(s.db.QueryRowContext(ctx, `
		SELECT id, name, user_id FROM categories WHERE name = $1 ORDER BY id LIMIT 1
	`, name))
}

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, user_id FROM categories ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.UserID); err != nil {
			return nil, fmt.Errorf("store: scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}

	return categories, nil
}

// CategoryNameTaken reports whether another category (id != excludeID) uses name.
func (s *Store) CategoryNameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM categories WHERE name = $1 AND id <> $2
		)
	`, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: check category name: %w", err)
	}
	return exists, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *Category) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = $1 WHERE id = $2
	`, c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("store: update category: %w", err)
	}
	return expectOne(res)
}

// DeleteCategory removes the category and every item filed under it.
// Callers wanting atomicity run it inside db.WithTx.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM category_items WHERE category_id = $1
	`, id); err != nil {
		return fmt.Errorf("store: delete category items: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM categories WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	return expectOne(res)
}

func scanCategory(row *sql.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan category: %w", err)
	}
	return &c, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
