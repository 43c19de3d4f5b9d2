package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/qjiujiu/toy-readhub/model"
	booksvc "github.com/qjiujiu/toy-readhub/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (r IngestBookReq) toInput() booksvc.UpsertInput {
	return booksvc.UpsertInput{
		Title:         r.Title,
		Author:        r.Author,
		ISBN:          r.ISBN,
		Abstract:      r.Abstract,
		Tag:           r.Tag,
		WarehouseName: r.WarehouseName,
		Area:          r.Area,
		Floor:         r.Floor,
	}
}

// POST /v1/books
func (h *Controller) Ingest(c echo.Context) error {
	var req IngestBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	detail, err := h.Svc.UpsertIntoWarehouse(c.Request().Context(), req.toInput())
	if err != nil {
		h.Log.Error("book ingest", "isbn", req.ISBN, "err", err)
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// POST /v1/books/batch
func (h *Controller) IngestBatch(c echo.Context) error {
	var reqs []IngestBookReq
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	// Per-item field problems surface as failed[] entries from the service
	// loop, not as a batch-level 400.
	items := make([]booksvc.UpsertInput, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, r.toInput())
	}

	out, err := h.Svc.CreateBatch(c.Request().Context(), items)
	if err != nil {
		h.Log.Error("book batch ingest", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, out)
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	page, pageSize := paging(c)
	items, total, err := h.Svc.List(c.Request().Context(), page*pageSize, pageSize)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if items == nil {
		items = []model.Book{}
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "count": len(items), "books": items})
}

// GET /v1/books/:bid
func (h *Controller) Detail(c echo.Context) error {
	bid, err := strconv.ParseInt(c.Param("bid"), 10, 64)
	if err != nil || bid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.GetByID(c.Request().Context(), bid)
	if err != nil {
		return h.mapErr(c, err)
	}
	details, err := h.Svc.GetDetails(c.Request().Context(), bid)
	if err != nil {
		h.Log.Error("book detail", "bid", bid, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if details == nil {
		details = []model.BookDetail{}
	}
	return c.JSON(http.StatusOK, echo.Map{"book": b, "holdings": details})
}

// GET /v1/books/isbn/:isbn
func (h *Controller) GetByISBN(c echo.Context) error {
	b, err := h.Svc.GetByISBN(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// GET /v1/books/title/:title
func (h *Controller) FindByTitle(c echo.Context) error {
	books, err := h.Svc.FindByTitle(c.Request().Context(), c.Param("title"))
	if err != nil {
		h.Log.Error("book find by title", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if len(books) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no books found with this title"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": books})
}

// GET /v1/books/author/:author
func (h *Controller) FindByAuthor(c echo.Context) error {
	books, err := h.Svc.FindByAuthor(c.Request().Context(), c.Param("author"))
	if err != nil {
		h.Log.Error("book find by author", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if len(books) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no books found with this author"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": books})
}

// PUT /v1/books/isbn/:isbn
func (h *Controller) UpdateByISBN(c echo.Context) error {
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	b, err := h.Svc.UpdateByISBN(c.Request().Context(), c.Param("isbn"), model.BookUpdate{
		Title:    req.Title,
		Author:   req.Author,
		Abstract: req.Abstract,
		Tag:      req.Tag,
	})
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// PATCH /v1/locations/:loc_id
func (h *Controller) UpdateLocation(c echo.Context) error {
	locID, err := strconv.ParseInt(c.Param("loc_id"), 10, 64)
	if err != nil || locID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateLocationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	loc, err := h.Svc.UpdateLocation(c.Request().Context(), locID, req.Area, req.Floor)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, loc)
}

// DELETE /v1/books/isbn/:isbn
func (h *Controller) DeleteByISBN(c echo.Context) error {
	summary, err := h.Svc.DeleteByISBN(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Controller) mapErr(c echo.Context, err error) error {
	switch booksvc.Code(err) {
	case booksvc.ErrInvalidTag:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid tag"})
	case booksvc.ErrMissingWarehouse:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "warehouse_name is required"})
	case booksvc.ErrDuplicateISBN, booksvc.ErrDuplicateKey:
		return c.JSON(http.StatusConflict, echo.Map{"message": "duplicate entry"})
	case booksvc.ErrMissingInventory:
		return c.JSON(http.StatusConflict, echo.Map{"message": "no inventory backing this location"})
	case booksvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case booksvc.ErrLocationNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "location not found"})
	default:
		h.Log.Error("book service", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func paging(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}
