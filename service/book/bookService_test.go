package booksvc_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qjiujiu/toy-readhub/model"
	booksvc "github.com/qjiujiu/toy-readhub/service/book"
)

// fakeTx runs the closure without a real transaction; repo fakes below keep
// their state in maps.
type fakeTx struct{}

func (fakeTx) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error { return fn(nil) }

type key struct {
	bookID    int64
	warehouse string
}

// store is an in-memory stand-in for the three tables, shared by the repo
// fakes so cross-entity invariants can be observed.
type store struct {
	nextID int64
	books  map[string]*model.Book // by isbn
	inv    map[key]*model.InventoryRecord
	loc    map[key]*model.LocationRecord
	events []string
}

func newStore() *store {
	return &store{
		books: map[string]*model.Book{},
		inv:   map[key]*model.InventoryRecord{},
		loc:   map[key]*model.LocationRecord{},
	}
}

func (s *store) id() int64 { s.nextID++; return s.nextID }

func (s *store) bookByID(bid int64) *model.Book {
	for _, b := range s.books {
		if b.BID == bid {
			return b
		}
	}
	return nil
}

type bookFake struct{ s *store }

func (f bookFake) Create(_ context.Context, _ *sql.Tx, b *model.Book) error {
	if _, ok := f.s.books[b.ISBN]; ok {
		return fmt.Errorf("duplicate isbn %s", b.ISBN)
	}
	b.BID = f.s.id()
	cp := *b
	f.s.books[b.ISBN] = &cp
	return nil
}

func (f bookFake) GetByISBN(_ context.Context, isbn string) (*model.Book, error) {
	b, ok := f.s.books[isbn]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f bookFake) GetByID(_ context.Context, bid int64) (*model.Book, error) {
	if b := f.s.bookByID(bid); b != nil {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (f bookFake) FindByTitle(_ context.Context, title string) ([]model.Book, error) {
	var out []model.Book
	for _, b := range f.s.books {
		if b.Title == title {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f bookFake) FindByAuthor(_ context.Context, author string) ([]model.Book, error) {
	var out []model.Book
	for _, b := range f.s.books {
		if b.Author == author {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f bookFake) List(_ context.Context, offset, limit int) ([]model.Book, int64, error) {
	var out []model.Book
	for _, b := range f.s.books {
		out = append(out, *b)
	}
	return out, int64(len(f.s.books)), nil
}

func (f bookFake) UpdateByISBN(_ context.Context, isbn string, u model.BookUpdate) (*model.Book, error) {
	b, ok := f.s.books[isbn]
	if !ok {
		return nil, nil
	}
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Abstract != nil {
		b.Abstract = u.Abstract
	}
	if u.Tag != nil {
		b.Tag = u.Tag
	}
	cp := *b
	return &cp, nil
}

func (f bookFake) Delete(_ context.Context, _ *sql.Tx, bid int64) (bool, error) {
	f.s.events = append(f.s.events, "delete_book")
	for isbn, b := range f.s.books {
		if b.BID == bid {
			delete(f.s.books, isbn)
			return true, nil
		}
	}
	return false, nil
}

type invFake struct{ s *store }

func (f invFake) LockByKey(_ context.Context, _ *sql.Tx, bookID int64, warehouse string) (*model.InventoryRecord, error) {
	rec, ok := f.s.inv[key{bookID, warehouse}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f invFake) Create(_ context.Context, _ *sql.Tx, bookID int64, warehouse string, quantity int64) (*model.InventoryRecord, error) {
	k := key{bookID, warehouse}
	if _, ok := f.s.inv[k]; ok {
		return nil, fmt.Errorf("duplicate inventory key %v", k)
	}
	rec := &model.InventoryRecord{InvID: f.s.id(), BookID: bookID, WarehouseName: warehouse, Quantity: quantity}
	f.s.inv[k] = rec
	return rec, nil
}

func (f invFake) Adjust(_ context.Context, _ *sql.Tx, bookID int64, warehouse string, delta int64) (int64, error) {
	rec, ok := f.s.inv[key{bookID, warehouse}]
	if !ok || rec.Quantity+delta < 0 {
		return 0, nil
	}
	rec.Quantity += delta
	return 1, nil
}

func (f invFake) DeleteAllForBook(_ context.Context, _ *sql.Tx, bookID int64) (int64, error) {
	f.s.events = append(f.s.events, "delete_inventories")
	var n int64
	for k := range f.s.inv {
		if k.bookID == bookID {
			delete(f.s.inv, k)
			n++
		}
	}
	return n, nil
}

type locFake struct{ s *store }

func (f locFake) Create(_ context.Context, _ *sql.Tx, loc *model.LocationRecord) error {
	k := key{loc.BookID, loc.WarehouseName}
	if _, ok := f.s.inv[k]; !ok {
		return fmt.Errorf("no inventory backing %v", k)
	}
	if _, ok := f.s.loc[k]; ok {
		return fmt.Errorf("duplicate location key %v", k)
	}
	loc.LocID = f.s.id()
	cp := *loc
	f.s.loc[k] = &cp
	return nil
}

func (f locFake) Update(_ context.Context, locID int64, area, floor *string) (*model.LocationRecord, error) {
	for _, loc := range f.s.loc {
		if loc.LocID == locID {
			if area != nil {
				loc.Area = area
			}
			if floor != nil {
				loc.Floor = floor
			}
			cp := *loc
			return &cp, nil
		}
	}
	return nil, nil
}

func (f locFake) GetDetail(_ context.Context, bookID int64, warehouse string) (*model.BookDetail, error) {
	k := key{bookID, warehouse}
	loc, ok := f.s.loc[k]
	if !ok {
		return nil, nil
	}
	inv := f.s.inv[k]
	b := f.s.bookByID(bookID)
	return &model.BookDetail{
		Book:          *b,
		WarehouseName: warehouse,
		Area:          loc.Area,
		Floor:         loc.Floor,
		Quantity:      inv.Quantity,
	}, nil
}

func (f locFake) ListDetailsByBookID(ctx context.Context, bookID int64) ([]model.BookDetail, error) {
	var out []model.BookDetail
	for k := range f.s.loc {
		if k.bookID == bookID {
			d, _ := f.GetDetail(ctx, k.bookID, k.warehouse)
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f locFake) DeleteAllForBook(_ context.Context, _ *sql.Tx, bookID int64) (int64, error) {
	f.s.events = append(f.s.events, "delete_locations")
	var n int64
	for k := range f.s.loc {
		if k.bookID == bookID {
			delete(f.s.loc, k)
			n++
		}
	}
	return n, nil
}

func newService(s *store) booksvc.Service {
	return booksvc.New(fakeTx{}, bookFake{s}, invFake{s}, locFake{s})
}

func strp(s string) *string { return &s }

func ingest(isbn, warehouse string) booksvc.UpsertInput {
	return booksvc.UpsertInput{
		Title:         "Some Title",
		Author:        "Some Author",
		ISBN:          isbn,
		WarehouseName: warehouse,
		Area:          strp("A"),
		Floor:         strp("1F"),
	}
}

// --- tests ---

func TestUpsert_NewISBNCreatesAllThreeRows(t *testing.T) {
	s := newStore()
	svc := newService(s)

	detail, err := svc.UpsertIntoWarehouse(context.Background(), ingest("978-0-1", "Main"))
	require.NoError(t, err)
	require.Equal(t, int64(1), detail.Quantity)
	require.Equal(t, "Main", detail.WarehouseName)
	require.Equal(t, "A", *detail.Area)

	require.Len(t, s.books, 1)
	require.Len(t, s.inv, 1)
	require.Len(t, s.loc, 1)
}

func TestUpsert_SameKeyAccumulatesQuantity(t *testing.T) {
	s := newStore()
	svc := newService(s)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.UpsertIntoWarehouse(ctx, ingest("978-0-1", "Main"))
		require.NoError(t, err)
	}

	detail, err := svc.UpsertIntoWarehouse(ctx, ingest("978-0-1", "Main"))
	require.NoError(t, err)
	require.Equal(t, int64(4), detail.Quantity)
	require.Len(t, s.inv, 1, "re-ingestion must not create parallel rows")
	require.Len(t, s.loc, 1)
}

func TestUpsert_ReingestKeepsFirstPlacement(t *testing.T) {
	s := newStore()
	svc := newService(s)
	ctx := context.Background()

	_, err := svc.UpsertIntoWarehouse(ctx, ingest("978-0-1", "Main"))
	require.NoError(t, err)

	in := ingest("978-0-1", "Main")
	in.Area = strp("Z")
	in.Floor = strp("9F")
	detail, err := svc.UpsertIntoWarehouse(ctx, in)
	require.NoError(t, err)

	require.Equal(t, int64(2), detail.Quantity)
	require.Equal(t, "A", *detail.Area, "placement is fixed at first ingestion")
	require.Equal(t, "1F", *detail.Floor)
}

func TestUpsert_SecondWarehouseFansOut(t *testing.T) {
	s := newStore()
	svc := newService(s)
	ctx := context.Background()

	_, err := svc.UpsertIntoWarehouse(ctx, ingest("978-0-1", "Main"))
	require.NoError(t, err)
	detail, err := svc.UpsertIntoWarehouse(ctx, ingest("978-0-1", "East"))
	require.NoError(t, err)

	require.Equal(t, int64(1), detail.Quantity)
	require.Len(t, s.books, 1, "same catalog row")
	require.Len(t, s.inv, 2)
	require.Len(t, s.loc, 2)

	b := s.books["978-0-1"]
	main := s.inv[key{b.BID, "Main"}]
	require.Equal(t, int64(1), main.Quantity, "first warehouse untouched")
}

func TestUpsert_InvalidTag(t *testing.T) {
	svc := newService(newStore())

	in := ingest("978-0-1", "Main")
	in.Tag = strp("9")
	_, err := svc.UpsertIntoWarehouse(context.Background(), in)
	require.Error(t, err)
	require.Equal(t, booksvc.ErrInvalidTag, booksvc.Code(err))
}

func TestUpsert_MissingWarehouse(t *testing.T) {
	svc := newService(newStore())

	in := ingest("978-0-1", "  ")
	_, err := svc.UpsertIntoWarehouse(context.Background(), in)
	require.Error(t, err)
	require.Equal(t, booksvc.ErrMissingWarehouse, booksvc.Code(err))
}

func TestUpsert_ValidTagStored(t *testing.T) {
	s := newStore()
	svc := newService(s)

	in := ingest("978-0-1", "Main")
	in.Tag = strp("I")
	_, err := svc.UpsertIntoWarehouse(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "I", *s.books["978-0-1"].Tag)
}

func TestCreateBatch_OneBadItemDoesNotAbortOthers(t *testing.T) {
	s := newStore()
	svc := newService(s)

	bad := ingest("978-0-2", "Main")
	bad.Tag = strp("??")

	out, err := svc.CreateBatch(context.Background(), []booksvc.UpsertInput{
		ingest("978-0-1", "Main"),
		bad,
		ingest("978-0-3", "East"),
	})
	require.NoError(t, err)
	require.Len(t, out.Success, 2)
	require.Len(t, out.Failed, 1)
	require.Equal(t, 1, out.Failed[0].Index)
	require.Equal(t, "978-0-2", out.Failed[0].ISBN)

	// items 1 and 3 are committed
	require.Len(t, s.books, 2)
	require.Len(t, s.inv, 2)
}

func TestDeleteByISBN_CascadesInDependencyOrder(t *testing.T) {
	s := newStore()
	svc := newService(s)
	ctx := context.Background()

	_, err := svc.UpsertIntoWarehouse(ctx, ingest("978-0-1", "Main"))
	require.NoError(t, err)
	_, err = svc.UpsertIntoWarehouse(ctx, ingest("978-0-1", "East"))
	require.NoError(t, err)
	s.events = nil

	summary, err := svc.DeleteByISBN(ctx, "978-0-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.DeletedLocations)
	require.Equal(t, int64(2), summary.DeletedInventories)
	require.Equal(t, "978-0-1", summary.Book.ISBN)

	require.Equal(t, []string{"delete_locations", "delete_inventories", "delete_book"}, s.events)
	require.Empty(t, s.books)
	require.Empty(t, s.inv)
	require.Empty(t, s.loc)

	_, err = svc.GetByISBN(ctx, "978-0-1")
	require.Equal(t, booksvc.ErrBookNotFound, booksvc.Code(err))
}

func TestDeleteByISBN_NotFound(t *testing.T) {
	svc := newService(newStore())

	_, err := svc.DeleteByISBN(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, booksvc.ErrBookNotFound, booksvc.Code(err))
}

func TestUpdateByISBN_InvalidTagRejected(t *testing.T) {
	s := newStore()
	svc := newService(s)
	ctx := context.Background()

	_, err := svc.UpsertIntoWarehouse(ctx, ingest("978-0-1", "Main"))
	require.NoError(t, err)

	_, err = svc.UpdateByISBN(ctx, "978-0-1", model.BookUpdate{Tag: strp("bogus")})
	require.Equal(t, booksvc.ErrInvalidTag, booksvc.Code(err))

	got, err := svc.UpdateByISBN(ctx, "978-0-1", model.BookUpdate{Title: strp("Renamed")})
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Title)
}

func TestUpdateLocation_OnlyAreaFloorChange(t *testing.T) {
	s := newStore()
	svc := newService(s)
	ctx := context.Background()

	_, err := svc.UpsertIntoWarehouse(ctx, ingest("978-0-1", "Main"))
	require.NoError(t, err)

	var locID int64
	for _, l := range s.loc {
		locID = l.LocID
	}
	got, err := svc.UpdateLocation(ctx, locID, strp("B"), nil)
	require.NoError(t, err)
	require.Equal(t, "B", *got.Area)
	require.Equal(t, "1F", *got.Floor)
	require.Equal(t, "Main", got.WarehouseName, "key never changes in place")
}

func TestUpdateLocation_NotFound(t *testing.T) {
	svc := newService(newStore())

	_, err := svc.UpdateLocation(context.Background(), 404, strp("B"), nil)
	require.Equal(t, booksvc.ErrLocationNotFound, booksvc.Code(err))
}
