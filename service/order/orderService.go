package ordersvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/qjiujiu/toy-readhub/model"
	"github.com/qjiujiu/toy-readhub/util/database"
	"github.com/qjiujiu/toy-readhub/util/pgerr"
)

// errors used by controllers

type ErrCode string

const (
	ErrInsufficientStock       ErrCode = "INSUFFICIENT_STOCK"
	ErrOrderNotFound           ErrCode = "ORDER_NOT_FOUND"
	ErrOrderAlreadyReturned    ErrCode = "ORDER_ALREADY_RETURNED"
	ErrInvalidStatusTransition ErrCode = "INVALID_STATUS_TRANSITION"
	ErrInvalidStatus           ErrCode = "INVALID_STATUS"
	ErrBookNotFound            ErrCode = "BOOK_NOT_FOUND"
	ErrUserNotFound            ErrCode = "USER_NOT_FOUND"
	ErrUpdateFailed            ErrCode = "UPDATE_FAILED"
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

type CreateInput struct {
	UserID        int64
	BookID        int64
	WarehouseName string
}

type BatchFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BatchResult struct {
	Success []*model.Order `json:"success"`
	Failed  []BatchFailure `json:"failed"`
}

type OrderRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, userID, bookID int64, warehouse string) (*model.Order, error)
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, orderID int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, orderID int64, status model.OrderStatus, returnTime *time.Time) (int64, error)
	List(ctx context.Context, offset, limit int) ([]model.Order, int64, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.Order, error)
	ListByBook(ctx context.Context, bookID int64, offset, limit int) ([]model.Order, error)
}

type InventoryRepo interface {
	LockByKey(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string) (*model.InventoryRecord, error)
	Adjust(ctx context.Context, tx *sql.Tx, bookID int64, warehouse string, delta int64) (int64, error)
}

type BookRepo interface {
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
}

type UserRepo interface {
	ByStudentID(ctx context.Context, studentID string) (*model.User, error)
}

type Service interface {
	// Create borrows one copy: stock check and debit happen atomically with
	// the order insert.
	Create(ctx context.Context, in CreateInput) (*model.Order, error)

	// CreateBatch processes each borrow independently; a failed item neither
	// aborts nor rolls back its neighbors.
	CreateBatch(ctx context.Context, items []CreateInput) (*BatchResult, error)

	// UpdateStatus drives the order state machine and credits the copy back
	// to inventory on returned / lost_and_returned.
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error)

	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	List(ctx context.Context, offset, limit int) ([]model.Order, int64, error)
	ListByStudent(ctx context.Context, studentID string, offset, limit int) ([]model.Order, error)
	ListByISBN(ctx context.Context, isbn string, offset, limit int) ([]model.Order, error)
}

// ----- Service implementation -----

type service struct {
	tx     database.TxRunner
	orders OrderRepo
	inv    InventoryRepo
	books  BookRepo
	users  UserRepo
}

func New(tx database.TxRunner, orders OrderRepo, inv InventoryRepo, books BookRepo, users UserRepo) Service {
	return &service{tx: tx, orders: orders, inv: inv, books: books, users: users}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*model.Order, error) {
	var order *model.Order
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		inv, err := s.inv.LockByKey(ctx, tx, in.BookID, in.WarehouseName)
		if err != nil {
			return err
		}
		if inv == nil || inv.Quantity == 0 {
			return makeErr(ErrInsufficientStock)
		}

		order, err = s.orders.Insert(ctx, tx, in.UserID, in.BookID, in.WarehouseName)
		if err != nil {
			if pgerr.IsForeignKeyViolation(err) {
				return makeErr(ErrUserNotFound)
			}
			return err
		}

		aff, err := s.inv.Adjust(ctx, tx, in.BookID, in.WarehouseName, -1)
		if err != nil {
			return err
		}
		if aff == 0 {
			// Lost the race on the last copy despite the lock; refuse rather
			// than let quantity underflow.
			return makeErr(ErrInsufficientStock)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) CreateBatch(ctx context.Context, items []CreateInput) (*BatchResult, error) {
	out := &BatchResult{Success: []*model.Order{}, Failed: []BatchFailure{}}
	for i, item := range items {
		order, err := s.Create(ctx, item)
		if err != nil {
			out.Failed = append(out.Failed, BatchFailure{Index: i, Error: err.Error()})
			continue
		}
		out.Success = append(out.Success, order)
	}
	return out, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, makeErr(ErrInvalidStatus)
	}

	var updated *model.Order
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		order, err := s.orders.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return makeErr(ErrOrderNotFound)
		}
		if order.Status.Terminal() {
			return makeErr(ErrOrderAlreadyReturned)
		}
		if !order.Status.CanTransition(status) {
			return makeErr(ErrInvalidStatusTransition)
		}

		var returnTime *time.Time
		if status.RestocksOnEntry() {
			now := time.Now().UTC()
			returnTime = &now
		}

		aff, err := s.orders.UpdateStatus(ctx, tx, orderID, status, returnTime)
		if err != nil {
			return err
		}
		if aff == 0 {
			return makeErr(ErrUpdateFailed)
		}

		if status.RestocksOnEntry() {
			aff, err := s.inv.Adjust(ctx, tx, order.BookID, order.WarehouseName, 1)
			if err != nil {
				return err
			}
			if aff == 0 {
				return makeErr(ErrUpdateFailed)
			}
		}

		order.Status = status
		order.ReturnTime = returnTime
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, makeErr(ErrOrderNotFound)
	}
	return order, nil
}

func (s *service) List(ctx context.Context, offset, limit int) ([]model.Order, int64, error) {
	return s.orders.List(ctx, offset, limit)
}

func (s *service) ListByStudent(ctx context.Context, studentID string, offset, limit int) ([]model.Order, error) {
	u, err := s.users.ByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	return s.orders.ListByUser(ctx, u.UID, offset, limit)
}

func (s *service) ListByISBN(ctx context.Context, isbn string, offset, limit int) ([]model.Order, error) {
	b, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	return s.orders.ListByBook(ctx, b.BID, offset, limit)
}
