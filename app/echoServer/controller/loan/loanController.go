package loan

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/response"
	"github.com/MANUEL666GAMER/Biblioteca/model"
	loansvc "github.com/MANUEL666GAMER/Biblioteca/service/loan"
)

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func queryID(c echo.Context, name string) (int64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

// List loans
// @Summary      List loans
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        state    query  string  false  "ACTIVE | PENDING | RETURNED | OVERDUE"
// @Param        book_id  query  int     false  "filter by book"
// @Param        user_id  query  int     false  "filter by patron"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Router       /api/prestamos [get]
func (h *Controller) List(c echo.Context) error {
	bookID, okBook := queryID(c, "book_id")
	userID, okUser := queryID(c, "user_id")
	if !okBook || !okUser {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	f := model.LoanFilter{
		State:  model.LoanState(c.QueryParam("state")),
		BookID: bookID,
		UserID: userID,
	}
	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /api/prestamos/:id
func (h *Controller) Get(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	row, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// Create loan
// @Summary      Create loan
// @Description  Rejected with 400 when due_date is not after loan_date or the book already has an open loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  CreateLoanReq  true  "Loan"
// @Success      201  {object}  model.Loan
// @Failure      400  {object}  map[string]any "invalid date range / book unavailable"
// @Failure      404  {object}  map[string]any
// @Router       /api/prestamos [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateLoanReq
	if err := c.Bind(&req); err != nil {
		return response.BadBody(c, h.Log, err)
	}
	if err := h.V.Struct(req); err != nil {
		return response.Validation(c, h.Log, err)
	}
	row := req.toModel()
	if err := h.Svc.Create(c.Request().Context(), row); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, row)
}

// PUT /api/prestamos/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	var req UpdateLoanReq
	if err := c.Bind(&req); err != nil {
		return response.BadBody(c, h.Log, err)
	}
	if err := h.V.Struct(req); err != nil {
		return response.Validation(c, h.Log, err)
	}
	row := req.toModel(id)
	if err := h.Svc.Update(c.Request().Context(), row); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// POST /api/prestamos/:id/devolucion
func (h *Controller) Return(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	row, err := h.Svc.Return(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// DELETE /api/prestamos/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /api/prestamos/vencidos
func (h *Controller) MarkOverdue(c echo.Context) error {
	n, err := h.Svc.MarkOverdue(c.Request().Context())
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// GET /api/prestamos/actividad
func (h *Controller) Activity(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
		}
		limit = n
	}
	rows, err := h.Svc.Activity(c.Request().Context(), limit)
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
