// Package catalog holds the catalog's read and write operations. Every
// mutation loads its target, checks ownership and writes inside one
// transaction.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"catalog-service/internal/db"
	"catalog-service/internal/logger"
	"catalog-service/internal/store"
)

// MaxTitleLen matches the width of category_items.title.
const MaxTitleLen = 80

type Service struct {
	db *sql.DB
}

func NewService(conn *sql.DB) *Service {
	return &Service{db: conn}
}

func (s *Service) read() *store.Store {
	return store.New(s.db)
}

func (s *Service) inTx(ctx context.Context, fn func(st *store.Store) error) error {
	return db.WithTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		return fn(store.New(tx))
	})
}

func (s *Service) Categories(ctx context.Context) ([]store.Category, error) {
	return s.read().ListCategories(ctx)
}

func (s *Service) Category(ctx context.Context, id int64) (*store.Category, error) {
	c, err := s.read().CategoryByID(ctx, id)
	if err != nil {
		return nil, translate(err, "category", id)
	}
	return c, nil
}

func (s *Service) CategoryByName(ctx context.Context, name string) (*store.Category, error) {
	c, err := s.read().CategoryByName(ctx, name)
	if err != nil {
		return nil, translate(err, "category", name)
	}
	return c, nil
}

// FindCategory resolves a path reference: digits are an id, anything else a name.
func (s *Service) FindCategory(ctx context.Context, ref string) (*store.Category, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.Category(ctx, id)
	}
	return s.CategoryByName(ctx, ref)
}

func (s *Service) Items(ctx context.Context) ([]store.Item, error) {
	return s.read().ListItems(ctx)
}

func (s *Service) ItemsInCategory(ctx context.Context, categoryID int64) ([]store.Item, error) {
	return s.read().ItemsByCategory(ctx, categoryID)
}

func (s *Service) Item(ctx context.Context, id int64) (*store.Item, error) {
	it, err := s.read().ItemByID(ctx, id)
	if err != nil {
		return nil, translate(err, "item", id)
	}
	return it, nil
}

func (s *Service) ItemByTitle(ctx context.Context, categoryID int64, title string) (*store.Item, error) {
	it, err := s.read().ItemByTitle(ctx, categoryID, title)
	if err != nil {
		return nil, translate(err, "item", title)
	}
	return it, nil
}

// FindItem resolves an item reference within category c. Digits are an id,
// anything else a title. An id filed under another category is not found.
func (s *Service) FindItem(ctx context.Context, c *store.Category, ref string) (*store.Item, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		it, err := s.Item(ctx, id)
		if err != nil {
			return nil, err
		}
		if it.CategoryID != c.ID {
			return nil, notFound("item", ref)
		}
		return it, nil
	}
	return s.ItemByTitle(ctx, c.ID, ref)
}

func (s *Service) LatestItems(ctx context.Context, n int) ([]store.LatestItem, error) {
	return s.read().LatestItems(ctx, n)
}

func (s *Service) Users(ctx context.Context) ([]store.User, error) {
	return s.read().ListUsers(ctx)
}

func (s *Service) User(ctx context.Context, id int64) (*store.User, error) {
	u, err := s.read().UserByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user", id)
	}
	return u, nil
}

func (s *Service) CreateCategory(ctx context.Context, p *Principal, name string) (*store.Category, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is empty", ErrInvalid)
	}

	c := &store.Category{Name: name, UserID: p.UserID}
	err := s.inTx(ctx, func(st *store.Store) error {
		taken, err := st.CategoryNameTaken(ctx, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: category %q", ErrDuplicate, name)
		}
		return st.CreateCategory(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("category created", map[string]any{
		"category_id": c.ID,
		"user_id":     p.UserID,
	})
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, p *Principal, id int64, name string) (*store.Category, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}

	var c *store.Category
	err := s.inTx(ctx, func(st *store.Store) error {
		var err error
		c, err = st.CategoryByID(ctx, id)
		if err != nil {
			return translate(err, "category", id)
		}

		if err := Authorize(p, c.UserID); err != nil {
			return err
		}

		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%w: category name is empty", ErrInvalid)
		}

		taken, err := st.CategoryNameTaken(ctx, name, c.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: category %q", ErrDuplicate, name)
		}

		c.Name = name
		return st.UpdateCategory(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes the category together with every item in it.
func (s *Service) DeleteCategory(ctx context.Context, p *Principal, id int64) error {
	if p == nil {
		return ErrNotAuthenticated
	}

	err := s.inTx(ctx, func(st *store.Store) error {
		c, err := st.CategoryByID(ctx, id)
		if err != nil {
			return translate(err, "category", id)
		}

		if err := Authorize(p, c.UserID); err != nil {
			return err
		}

		return st.DeleteCategory(ctx, c.ID)
	})
	if err != nil {
		return err
	}

	logger.Info("category deleted", map[string]any{
		"category_id": id,
		"user_id":     p.UserID,
	})
	return nil
}

// ItemInput carries item form values. On update, empty fields keep their
// current value.
type ItemInput struct {
	Title        string
	Description  string
	CategoryName string
}

func (in ItemInput) normalize() ItemInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryName = strings.TrimSpace(in.CategoryName)
	return in
}

func validTitle(title string) error {
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("%w: title longer than %d characters", ErrInvalid, MaxTitleLen)
	}
	return nil
}

func (s *Service) CreateItem(ctx context.Context, p *Principal, in ItemInput) (*store.Item, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}

	in = in.normalize()
	if in.Title == "" {
		return nil, fmt.Errorf("%w: item title is empty", ErrInvalid)
	}
	if in.CategoryName == "" {
		return nil, fmt.Errorf("%w: item category is empty", ErrInvalid)
	}
	if err := validTitle(in.Title); err != nil {
		return nil, err
	}

	it := &store.Item{Title: in.Title, Description: in.Description, UserID: p.UserID}
	err := s.inTx(ctx, func(st *store.Store) error {
		c, err := st.CategoryByName(ctx, in.CategoryName)
		if err != nil {
			return translate(err, "category", in.CategoryName)
		}
		it.CategoryID = c.ID

		taken, err := st.ItemTitleTaken(ctx, c.ID, in.Title, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: item %q in %q", ErrDuplicate, in.Title, c.Name)
		}

		return st.CreateItem(ctx, it)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("item created", map[string]any{
		"item_id":     it.ID,
		"category_id": it.CategoryID,
		"user_id":     p.UserID,
	})
	return it, nil
}

func (s *Service) UpdateItem(ctx context.Context, p *Principal, id int64, in ItemInput) (*store.Item, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}

	in = in.normalize()

	var it *store.Item
	err := s.inTx(ctx, func(st *store.Store) error {
		var err error
		it, err = st.ItemByID(ctx, id)
		if err != nil {
			return translate(err, "item", id)
		}

		if err := Authorize(p, it.UserID); err != nil {
			return err
		}

		if in.Title != "" {
			if err := validTitle(in.Title); err != nil {
				return err
			}
			it.Title = in.Title
		}
		if in.Description != "" {
			it.Description = in.Description
		}
		if in.CategoryName != "" {
			c, err := st.CategoryByName(ctx, in.CategoryName)
			if err != nil {
				return translate(err, "category", in.CategoryName)
			}
			it.CategoryID = c.ID
		}

		taken, err := st.ItemTitleTaken(ctx, it.CategoryID, it.Title, it.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: item %q", ErrDuplicate, it.Title)
		}

		return st.UpdateItem(ctx, it)
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) DeleteItem(ctx context.Context, p *Principal, id int64) error {
	if p == nil {
		return ErrNotAuthenticated
	}

	return s.inTx(ctx, func(st *store.Store) error {
		it, err := st.ItemByID(ctx, id)
		if err != nil {
			return translate(err, "item", id)
		}

		if err := Authorize(p, it.UserID); err != nil {
			return err
		}

		return st.DeleteItem(ctx, it.ID)
	})
}
