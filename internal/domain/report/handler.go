package report

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telecare/telecare/pkg/pagination"
)

// Handler exposes report listing over HTTP. Report creation goes through the
// consultation save-report endpoint.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/reports", h.ListReports)
}

func (h *Handler) ListReports(c echo.Context) error {
	patientEmail := c.QueryParam("patient_email")
	if patientEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_email query parameter is required")
	}

	pg := pagination.FromContext(c)
	reports, total, err := h.svc.ListByPatient(c.Request().Context(), patientEmail, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reports, total, pg.Limit, pg.Offset))
}
