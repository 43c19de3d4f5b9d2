package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/qjiujiu/toy-readhub/model"
	"github.com/qjiujiu/toy-readhub/app/echoServer/jwtx"
	usersvc "github.com/qjiujiu/toy-readhub/service/user"
)

type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type UpdateUserReq struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty"`
}

// GET /v1/users
func (h *Controller) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	users, total, err := h.Svc.List(c.Request().Context(), page*pageSize, pageSize)
	if err != nil {
		h.Log.Error("user list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "count": len(users), "users": users})
}

// GET /v1/users/me
func (h *Controller) Me(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	u, err := h.Svc.GetByID(c.Request().Context(), uid)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// GET /v1/users/id/:uid
func (h *Controller) GetByID(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, err := h.Svc.GetByID(c.Request().Context(), uid)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// GET /v1/users/student/:student_id
func (h *Controller) GetByStudentID(c echo.Context) error {
	u, err := h.Svc.GetByStudentID(c.Request().Context(), c.Param("student_id"))
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// PUT /v1/users/:uid
func (h *Controller) Update(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	u, err := h.Svc.Update(c.Request().Context(), uid, model.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// DELETE /v1/users/:uid
func (h *Controller) Delete(c echo.Context) error {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil || uid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), uid); err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

func (h *Controller) mapErr(c echo.Context, err error) error {
	if errors.Is(err, usersvc.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}
	h.Log.Error("user service", "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}
