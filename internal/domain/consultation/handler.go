package consultation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/telecare/telecare/internal/platform/auth"
)

// Handler exposes the consultation lifecycle over HTTP. Identity tokens
// arrive in the JSON request body as a `token` field and are always
// signature-verified before use.
type Handler struct {
	svc      *Service
	verifier *auth.Verifier
}

func NewHandler(svc *Service, verifier *auth.Verifier) *Handler {
	return &Handler{svc: svc, verifier: verifier}
}

// RegisterRoutes mounts the consultation routes on the group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Status)
	g.POST("/getdoctor", h.GetDoctors)
	g.POST("/request/:doctorId", h.RequestConsultation)
	g.POST("/pending-requests", h.PendingRequests)
	g.POST("/doctor-requests", h.DoctorRequests)
	g.POST("/approve-request/:requestId", h.ApproveRequest)
	g.POST("/patient-approved-requests", h.PatientApprovedRequests)
	g.POST("/save-report", h.SaveReport)
	g.POST("/doctor/patient-data", h.PatientData)
	g.POST("/save-summary", h.SaveSummary)
}

type tokenBody struct {
	Token string `json:"token"`
}

type saveReportBody struct {
	Token   string `json:"token"`
	Summary string `json:"summary"`
}

type saveSummaryBody struct {
	Token   string `json:"token"`
	RoomID  string `json:"roomId"`
	Summary string `json:"summary"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeError maps lifecycle sentinels to HTTP statuses.
func writeError(c echo.Context, err error) error {
	var status int
	var msg string
	switch {
	case errors.Is(err, ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, ErrDuplicateRequest):
		status, msg = http.StatusConflict, "consultation already requested"
	case errors.Is(err, ErrStoreUnavailable):
		status, msg = http.StatusServiceUnavailable, "service unavailable"
	default:
		status, msg = http.StatusInternalServerError, "internal error"
	}
	return c.JSON(status, errorResponse{Error: msg, Details: err.Error()})
}

// authenticate verifies the body-carried token and returns its claims.
func (h *Handler) authenticate(c echo.Context, token string) (*auth.Claims, error) {
	claims, err := h.verifier.Verify(token)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid token"})
	}
	return claims, nil
}

func (h *Handler) Status(c echo.Context) error {
	return c.String(http.StatusOK, "consultation service is running")
}

func (h *Handler) GetDoctors(c echo.Context) error {
	var body tokenBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	claims, err := h.authenticate(c, body.Token)
	if claims == nil {
		return err
	}

	doctors, err := h.svc.ListAvailableDoctors(c.Request().Context(), claims.Email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"doctors": doctors})
}

func (h *Handler) RequestConsultation(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid doctor id"})
	}

	var body tokenBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	claims, authErr := h.authenticate(c, body.Token)
	if claims == nil {
		return authErr
	}

	if err := h.svc.RequestConsultation(c.Request().Context(), claims.Email, doctorID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "consultation request sent",
	})
}

func (h *Handler) PendingRequests(c echo.Context) error {
	var body tokenBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	claims, err := h.authenticate(c, body.Token)
	if claims == nil {
		return err
	}

	requests, svcErr := h.svc.ListPendingForPatient(c.Request().Context(), claims.Email)
	if svcErr != nil {
		return writeError(c, svcErr)
	}
	return c.JSON(http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) DoctorRequests(c echo.Context) error {
	var body tokenBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	claims, err := h.authenticate(c, body.Token)
	if claims == nil {
		return err
	}

	requests, svcErr := h.svc.ListDoctorRequests(c.Request().Context(), claims.Email)
	if svcErr != nil {
		return writeError(c, svcErr)
	}
	return c.JSON(http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) ApproveRequest(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request id"})
	}

	var body tokenBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	claims, authErr := h.authenticate(c, body.Token)
	if claims == nil {
		return authErr
	}

	roomID, svcErr := h.svc.ApproveRequest(c.Request().Context(), claims.Email, requestID)
	if svcErr != nil {
		return writeError(c, svcErr)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"roomId":  roomID,
		"message": "request approved",
	})
}

func (h *Handler) PatientApprovedRequests(c echo.Context) error {
	var body tokenBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	claims, err := h.authenticate(c, body.Token)
	if claims == nil {
		return err
	}

	requests, svcErr := h.svc.ListApprovedForPatient(c.Request().Context(), claims.Email)
	if svcErr != nil {
		return writeError(c, svcErr)
	}
	return c.JSON(http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) SaveReport(c echo.Context) error {
	var body saveReportBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if body.Summary == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "summary is required"})
	}
	claims, err := h.authenticate(c, body.Token)
	if claims == nil {
		return err
	}

	if svcErr := h.svc.SaveReport(c.Request().Context(), claims.Email, body.Summary); svcErr != nil {
		return writeError(c, svcErr)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) PatientData(c echo.Context) error {
	var body tokenBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	claims, err := h.authenticate(c, body.Token)
	if claims == nil {
		return err
	}

	patients, svcErr := h.svc.ListPatientsForDoctor(c.Request().Context(), claims.Email)
	if svcErr != nil {
		return writeError(c, svcErr)
	}
	return c.JSON(http.StatusOK, map[string]any{"patients": patients})
}

func (h *Handler) SaveSummary(c echo.Context) error {
	var body saveSummaryBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if body.RoomID == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "roomId is required"})
	}
	if body.Summary == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "summary is required"})
	}
	claims, err := h.authenticate(c, body.Token)
	if claims == nil {
		return err
	}

	if svcErr := h.svc.SaveSummary(c.Request().Context(), claims.Email, body.RoomID, body.Summary); svcErr != nil {
		return writeError(c, svcErr)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
