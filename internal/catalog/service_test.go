package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"catalog-service/internal/db"
	"catalog-service/internal/store"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc   *Service
	st    *store.Store
	alice *Principal
	bob   *Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	d, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, db.Migrate(context.Background(), d))

	st := store.New(d)
	mk := func(email string) *Principal {
		id, _, err := st.CreateUserIfAbsent(context.Background(), &store.User{Name: email, Email: email})
		require.NoError(t, err)
		return &Principal{UserID: id}
	}

	return &fixture{
		svc:   NewService(d.DB),
		st:    st,
		alice: mk("alice@example.com"),
		bob:   mk("bob@example.com"),
	}
}

func TestCategoryLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.CreateCategory(ctx, f.alice, "  Snacks ")
	require.NoError(t, err)
	require.Equal(t, "Snacks", c.Name)
	require.Equal(t, f.alice.UserID, c.UserID)

	byRef, err := f.svc.FindCategory(ctx, "Snacks")
	require.NoError(t, err)
	require.Equal(t, c.ID, byRef.ID)

	byID, err := f.svc.FindCategory(ctx, fmt.Sprint(c.ID))
	require.NoError(t, err)
	require.Equal(t, c.ID, byID.ID)

	renamed, err := f.svc.UpdateCategory(ctx, f.alice, c.ID, "Treats")
	require.NoError(t, err)
	require.Equal(t, "Treats", renamed.Name)

	require.NoError(t, f.svc.DeleteCategory(ctx, f.alice, c.ID))
	_, err = f.svc.Category(ctx, c.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCategory_NonOwnerCannotEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.CreateCategory(ctx, f.alice, "Snacks")
	require.NoError(t, err)

	_, err = f.svc.UpdateCategory(ctx, f.bob, c.ID, "Bob's Snacks")
	require.ErrorIs(t, err, ErrNotAuthorized)

	err = f.svc.DeleteCategory(ctx, f.bob, c.ID)
	require.ErrorIs(t, err, ErrNotAuthorized)

	got, err := f.svc.Category(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "Snacks", got.Name)
}

func TestCategory_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCategory(ctx, nil, "Snacks")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.svc.CreateCategory(ctx, f.alice, "   ")
	require.ErrorIs(t, err, ErrInvalid)

	c, err := f.svc.CreateCategory(ctx, f.alice, "Snacks")
	require.NoError(t, err)

	_, err = f.svc.CreateCategory(ctx, f.bob, "Snacks")
	require.ErrorIs(t, err, ErrDuplicate)

	other, err := f.svc.CreateCategory(ctx, f.alice, "Drinks")
	require.NoError(t, err)

	_, err = f.svc.UpdateCategory(ctx, f.alice, other.ID, "Snacks")
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = f.svc.UpdateCategory(ctx, f.alice, c.ID, "Snacks")
	require.NoError(t, err, "keeping its own name is not a duplicate")

	_, err = f.svc.UpdateCategory(ctx, nil, c.ID, "x")
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.svc.UpdateCategory(ctx, f.alice, 999, "x")
	require.ErrorIs(t, err, ErrNotFound)

	err = f.svc.DeleteCategory(ctx, f.alice, 999)
	require.ErrorIs(t, err, ErrNotFound)

	err = f.svc.DeleteCategory(ctx, nil, c.ID)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestDeleteCategory_CascadesOnlyItsItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snacks, err := f.svc.CreateCategory(ctx, f.alice, "Snacks")
	require.NoError(t, err)
	_, err = f.svc.CreateCategory(ctx, f.alice, "Drinks")
	require.NoError(t, err)

	_, err = f.svc.CreateItem(ctx, f.alice, ItemInput{Title: "Chips", CategoryName: "Snacks"})
	require.NoError(t, err)
	_, err = f.svc.CreateItem(ctx, f.bob, ItemInput{Title: "Nuts", CategoryName: "Snacks"})
	require.NoError(t, err)
	tea, err := f.svc.CreateItem(ctx, f.alice, ItemInput{Title: "Tea", CategoryName: "Drinks"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCategory(ctx, f.alice, snacks.ID))

	items, err := f.svc.Items(ctx)
	require.NoError(t, err)
	require.Equal(t, []store.Item{*tea}, items)

	cats, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Equal(t, "Drinks", cats[0].Name)
}

func TestItemLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snacks, err := f.svc.CreateCategory(ctx, f.alice, "Snacks")
	require.NoError(t, err)
	drinks, err := f.svc.CreateCategory(ctx, f.alice, "Drinks")
	require.NoError(t, err)

	// bob may file items into alice's category and owns them
	it, err := f.svc.CreateItem(ctx, f.bob, ItemInput{Title: "Chips", Description: "salty", CategoryName: "Snacks"})
	require.NoError(t, err)
	require.Equal(t, f.bob.UserID, it.UserID)
	require.Equal(t, snacks.ID, it.CategoryID)

	found, err := f.svc.FindItem(ctx, snacks, "Chips")
	require.NoError(t, err)
	require.Equal(t, it.ID, found.ID)

	found, err = f.svc.FindItem(ctx, snacks, fmt.Sprint(it.ID))
	require.NoError(t, err)
	require.Equal(t, it.ID, found.ID)

	_, err = f.svc.FindItem(ctx, drinks, fmt.Sprint(it.ID))
	require.ErrorIs(t, err, ErrNotFound)

	t.Run("blank fields are kept", func(t *testing.T) {
		got, err := f.svc.UpdateItem(ctx, f.bob, it.ID, ItemInput{Title: "Crisps"})
		require.NoError(t, err)
		require.Equal(t, "Crisps", got.Title)
		require.Equal(t, "salty", got.Description)
		require.Equal(t, snacks.ID, got.CategoryID)
	})

	t.Run("move to another category", func(t *testing.T) {
		got, err := f.svc.UpdateItem(ctx, f.bob, it.ID, ItemInput{CategoryName: "Drinks"})
		require.NoError(t, err)
		require.Equal(t, drinks.ID, got.CategoryID)
		require.Equal(t, "Crisps", got.Title)
	})

	t.Run("category owner is not item owner", func(t *testing.T) {
		_, err := f.svc.UpdateItem(ctx, f.alice, it.ID, ItemInput{Title: "Mine"})
		require.ErrorIs(t, err, ErrNotAuthorized)
		require.ErrorIs(t, f.svc.DeleteItem(ctx, f.alice, it.ID), ErrNotAuthorized)
	})

	require.NoError(t, f.svc.DeleteItem(ctx, f.bob, it.ID))
	_, err = f.svc.Item(ctx, it.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestItem_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCategory(ctx, f.alice, "Snacks")
	require.NoError(t, err)
	_, err = f.svc.CreateCategory(ctx, f.alice, "Drinks")
	require.NoError(t, err)

	_, err = f.svc.CreateItem(ctx, nil, ItemInput{Title: "Chips", CategoryName: "Snacks"})
	require.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.svc.CreateItem(ctx, f.alice, ItemInput{CategoryName: "Snacks"})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = f.svc.CreateItem(ctx, f.alice, ItemInput{Title: "Chips"})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = f.svc.CreateItem(ctx, f.alice, ItemInput{Title: strings.Repeat("x", MaxTitleLen+1), CategoryName: "Snacks"})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = f.svc.CreateItem(ctx, f.alice, ItemInput{Title: "Chips", CategoryName: "Mains"})
	require.ErrorIs(t, err, ErrNotFound)

	chips, err := f.svc.CreateItem(ctx, f.alice, ItemInput{Title: "Chips", CategoryName: "Snacks"})
	require.NoError(t, err)

	_, err = f.svc.CreateItem(ctx, f.bob, ItemInput{Title: "Chips", CategoryName: "Snacks"})
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = f.svc.CreateItem(ctx, f.bob, ItemInput{Title: "Chips", CategoryName: "Drinks"})
	require.NoError(t, err, "titles are unique per category only")

	nuts, err := f.svc.CreateItem(ctx, f.alice, ItemInput{Title: "Nuts", CategoryName: "Snacks"})
	require.NoError(t, err)

	_, err = f.svc.UpdateItem(ctx, f.alice, nuts.ID, ItemInput{Title: "Chips"})
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = f.svc.UpdateItem(ctx, f.alice, chips.ID, ItemInput{Title: "Chips"})
	require.NoError(t, err, "re-saving own title is not a duplicate")

	_, err = f.svc.UpdateItem(ctx, f.alice, chips.ID, ItemInput{CategoryName: "Mains"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.UpdateItem(ctx, f.alice, 999, ItemInput{Title: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.UpdateItem(ctx, nil, chips.ID, ItemInput{Title: "x"})
	require.ErrorIs(t, err, ErrNotAuthenticated)

	require.ErrorIs(t, f.svc.DeleteItem(ctx, f.alice, 999), ErrNotFound)
	require.ErrorIs(t, f.svc.DeleteItem(ctx, nil, chips.ID), ErrNotAuthenticated)
}

func TestReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cats, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	require.Empty(t, cats)

	for _, name := range []string{"Snacks", "Apples"} {
		_, err := f.svc.CreateCategory(ctx, f.alice, name)
		require.NoError(t, err)
	}
	for i := 0; i < 12; i++ {
		_, err := f.svc.CreateItem(ctx, f.alice, ItemInput{Title: fmt.Sprintf("item %d", i), CategoryName: "Snacks"})
		require.NoError(t, err)
	}

	cats, err = f.svc.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, "Apples", cats[0].Name)

	latest, err := f.svc.LatestItems(ctx, 10)
	require.NoError(t, err)
	require.Len(t, latest, 10)
	require.Equal(t, "item 11", latest[0].Title)
	require.Equal(t, "Snacks", latest[0].CategoryName)

	users, err := f.svc.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	u, err := f.svc.User(ctx, f.bob.UserID)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", u.Email)

	_, err = f.svc.User(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.FindCategory(ctx, "Mains")
	require.ErrorIs(t, err, ErrNotFound)
}
