package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jooy-edu/jooy-auth/internal/core/service"
)

type WorksheetHandler struct {
	worksheets *service.WorksheetService
}

func NewWorksheetHandler(worksheets *service.WorksheetService) *WorksheetHandler {
	return &WorksheetHandler{worksheets: worksheets}
}

// List returns the worksheet catalog, optionally filtered by subject.
//
// @Summary      List worksheets
// @Tags         worksheets
// @Produce      json
// @Param        subject  query     string  false  "Subject filter"
// @Success      200      {array}   domain.Worksheet
// @Router       /app/worksheets [get]
func (h *WorksheetHandler) List(c echo.Context) error {
	sheets, err := h.worksheets.List(c.Request().Context(), c.QueryParam("subject"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sheets)
}

// Get returns one worksheet by id.
//
// @Summary      Get a worksheet
// @Tags         worksheets
// @Produce      json
// @Param        id   path      string  true  "Worksheet id"
// @Success      200  {object}  domain.Worksheet
// @Failure      404  {object}  map[string]string
// @Router       /app/worksheets/{id} [get]
func (h *WorksheetHandler) Get(c echo.Context) error {
	sheet, err := h.worksheets.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sheet)
}
