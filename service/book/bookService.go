package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/qjiujiu/toy-readhub/model"
	"github.com/qjiujiu/toy-readhub/util/database"
	"github.com/qjiujiu/toy-readhub/util/pgerr"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidTag       ErrCode = "INVALID_TAG"
	ErrMissingWarehouse ErrCode = "MISSING_WAREHOUSE"
	ErrDuplicateISBN    ErrCode = "DUPLICATE_ISBN"
	ErrDuplicateKey     ErrCode = "DUPLICATE_KEY"
	ErrMissingInventory ErrCode = "MISSING_INVENTORY"
	ErrBookNotFound     ErrCode = "BOOK_NOT_FOUND"
	ErrLocationNotFound ErrCode = "LOCATION_NOT_FOUND"
	ErrUpdateFailed     ErrCode = "UPDATE_FAILED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, or "" for untyped errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// dto

type UpsertInput struct {
	Title         string
	Author        string
	ISBN          string
	Abstract      *string
	Tag           *string
	WarehouseName string
	Area          *string
	Floor         *string
}

type BatchFailure struct {
	Index     int    `json:"index"`
	ISBN      string `json:"isbn"`
	Warehouse string `json:"warehouse_name"`
	Error     string `json:"error"`
}

type BatchResult struct {
	Success []*model.BookDetail `json:"success"`
	Failed  []BatchFailure      `json:"failed"`
}

type DeleteSummary struct {
	Book               *model.Book `json:"book"`
	DeletedLocations   int64       `json:"deleted_locations_count"`
	DeletedInventories int64       `json:"deleted_inventories_count"`
}

type BookRepo interface {
	Create(ctx context.Context, tx *sql.Tx, b *model.Book) error
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	GetByID(ctx context.Context, bid int64) (*model.Book, error)
	FindByTitle(ctx context.Context, title string) ([]model.Book, error)
	FindByAuthor(ctx context.Context, author string) ([]model.Book, error)
	List(ctx context.Context, offset, limit int) ([]model.Book, int64, error)
	UpdateByISBN(ctx context.Context, isbn string, u model.BookUpdate) (*model.Book, error)
	Delete(ctx context.Context, tx *sql.Tx, bid int64) (bool, error)
}

type InventoryRepo interface {
	LockByKey(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string) (*model.InventoryRecord, error)
	Create(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string, quantity int64) (*model.InventoryRecord, error)
	Adjust(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string, delta int64) (int64, error)
	DeleteAllForBook(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)
}

type LocationRepo interface {
	Create(ctx context.Context, tx *sql.Tx, loc *model.LocationRecord) error
	Update(ctx context.Context, locID int64, area, floor *string) (*model.LocationRecord, error)
	GetDetail(ctx context.Context, bookID int64, warehouse string) (*model.BookDetail, error)
	ListDetailsByBookID(ctx context.Context, bookID int64) ([]model.BookDetail, error)
	DeleteAllForBook(ctx context.Context, tx *sql.Tx, bookID int64) (int64, error)
}

type Service interface {
	// UpsertIntoWarehouse ingests one physical copy: new ISBN creates
	// book+inventory+location, known ISBN in a new warehouse creates the
	// inventory+location pair, known key increments quantity.
	UpsertIntoWarehouse(ctx context.Context, in UpsertInput) (*model.BookDetail, error)

	// CreateBatch ingests items independently; one item's failure never rolls
	// back another's commit.
	CreateBatch(ctx context.Context, items []UpsertInput) (*BatchResult, error)

	// DeleteByISBN tears a book down in dependency order:
	// locations, then inventories, then the catalog row.
	DeleteByISBN(ctx context.Context, isbn string) (*DeleteSummary, error)

	GetByID(ctx context.Context, bid int64) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	GetDetails(ctx context.Context, bid int64) ([]model.BookDetail, error)
	FindByTitle(ctx context.Context, title string) ([]model.Book, error)
	FindByAuthor(ctx context.Context, author string) ([]model.Book, error)
	List(ctx context.Context, offset, limit int) ([]model.Book, int64, error)
	UpdateByISBN(ctx context.Context, isbn string, u model.BookUpdate) (*model.Book, error)
	UpdateLocation(ctx context.Context, locID int64, area, floor *string) (*model.LocationRecord, error)
}

// ----- Service implementation -----

type service struct {
	tx    database.TxRunner
	books BookRepo
	inv   InventoryRepo
	loc   LocationRepo
}

func New(tx database.TxRunner, books BookRepo, inv InventoryRepo, loc LocationRepo) Service {
	return &service{tx: tx, books: books, inv: inv, loc: loc}
}

func (s *service) UpsertIntoWarehouse(ctx context.Context, in UpsertInput) (*model.BookDetail, error) {
	tag, err := normalizeTag(in.Tag)
	if err != nil {
		return nil, err
	}
	warehouse := strings.TrimSpace(in.WarehouseName)
	if warehouse == "" {
		return nil, makeErr(ErrMissingWarehouse)
	}

	book, err := s.books.GetByISBN(ctx, in.ISBN)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if book == nil {
			b := &model.Book{
				Title:    in.Title,
				Author:   in.Author,
				ISBN:     in.ISBN,
				Abstract: in.Abstract,
				Tag:      tag,
			}
			if err := s.books.Create(ctx, tx, b); err != nil {
				if pgerr.IsUniqueViolation(err) {
					return makeErr(ErrDuplicateISBN)
				}
				return err
			}
			book = b
			return s.createPair(ctx, tx, b.BID, warehouse, in.Area, in.Floor)
		}

		inv, err := s.inv.LockByKey(ctx, tx, book.BID, warehouse)
		if err != nil {
			return err
		}
		if inv == nil {
			return s.createPair(ctx, tx, book.BID, warehouse, in.Area, in.Floor)
		}

		// Re-ingestion of a known key only accumulates stock; the shelf
		// placement stays where the first ingestion put it.
		aff, err := s.inv.Adjust(ctx, tx, book.BID, warehouse, 1)
		if err != nil {
			return err
		}
		if aff == 0 {
			return makeErr(ErrUpdateFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail, err := s.loc.GetDetail(ctx, book.BID, warehouse)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, makeErr(ErrUpdateFailed)
	}
	return detail, nil
}

// createPair adds the inventory row and its location refinement for a key
// that has no stock yet. Inventory strictly first: a location may never exist
// without stock backing it.
func (s *service) createPair(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string, area, floor *string) error {
	if _, err := s.inv.Create(ctx, tx, bookID, warehouse, 1); err != nil {
		if pgerr.IsUniqueViolation(err) {
			return makeErr(ErrDuplicateKey)
		}
		return err
	}
	loc := &model.LocationRecord{
		BookID:        bookID,
		WarehouseName: warehouse,
		Area:          area,
		Floor:         floor,
	}
	if err := s.loc.Create(ctx, tx, loc); err != nil {
		if pgerr.IsForeignKeyViolation(err) {
			return makeErr(ErrMissingInventory)
		}
		if pgerr.IsUniqueViolation(err) {
			return makeErr(ErrDuplicateKey)
		}
		return err
	}
	return nil
}

func (s *service) CreateBatch(ctx context.Context, items []UpsertInput) (*BatchResult, error) {
	out := &BatchResult{Success: []*model.BookDetail{}, Failed: []BatchFailure{}}
	for i, item := range items {
		detail, err := s.UpsertIntoWarehouse(ctx, item)
		if err != nil {
			out.Failed = append(out.Failed, BatchFailure{
				Index:     i,
				ISBN:      item.ISBN,
				Warehouse: item.WarehouseName,
				Error:     err.Error(),
			})
			continue
		}
		out.Success = append(out.Success, detail)
	}
	return out, nil
}

func (s *service) DeleteByISBN(ctx context.Context, isbn string) (*DeleteSummary, error) {
	book, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}

	summary := &DeleteSummary{Book: book}
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		// Locations depend on inventory keys, so they go first.
		locs, err := s.loc.DeleteAllForBook(ctx, tx, book.BID)
		if err != nil {
			return err
		}
		invs, err := s.inv.DeleteAllForBook(ctx, tx, book.BID)
		if err != nil {
			return err
		}
		ok, err := s.books.Delete(ctx, tx, book.BID)
		if err != nil {
			return err
		}
		if !ok {
			return makeErr(ErrBookNotFound)
		}
		summary.DeletedLocations = locs
		summary.DeletedInventories = invs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *service) GetByID(ctx context.Context, bid int64) (*model.Book, error) {
	b, err := s.books.GetByID(ctx, bid)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	return b, nil
}

func (s *service) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	b, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	return b, nil
}

func (s *service) GetDetails(ctx context.Context, bid int64) ([]model.BookDetail, error) {
	return s.loc.ListDetailsByBookID(ctx, bid)
}

func (s *service) FindByTitle(ctx context.Context, title string) ([]model.Book, error) {
	return s.books.FindByTitle(ctx, title)
}

func (s *service) FindByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	return s.books.FindByAuthor(ctx, author)
}

func (s *service) List(ctx context.Context, offset, limit int) ([]model.Book, int64, error) {
	return s.books.List(ctx, offset, limit)
}

func (s *service) UpdateByISBN(ctx context.Context, isbn string, u model.BookUpdate) (*model.Book, error) {
	if u.Tag != nil {
		tag, err := normalizeTag(u.Tag)
		if err != nil {
			return nil, err
		}
		u.Tag = tag
	}
	b, err := s.books.UpdateByISBN(ctx, isbn, u)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	return b, nil
}

func (s *service) UpdateLocation(ctx context.Context, locID int64, area, floor *string) (*model.LocationRecord, error) {
	loc, err := s.loc.Update(ctx, locID, area, floor)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, makeErr(ErrLocationNotFound)
	}
	return loc, nil
}

// normalizeTag validates against the closed category set; blank collapses to
// "no tag".
func normalizeTag(tag *string) (*string, error) {
	if tag == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*tag)
	if t == "" {
		return nil, nil
	}
	if !model.ValidTag(t) {
		return nil, makeErr(ErrInvalidTag)
	}
	return &t, nil
}
