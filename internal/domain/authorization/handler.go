package authorization

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nexahealth/priorauth/internal/platform/auth"
	"github.com/nexahealth/priorauth/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/authorizations", h.CreateRequest,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleHospitalAdmin))
	api.GET("/authorizations", h.ListRequests)
	api.GET("/authorizations/:id", h.GetRequest)
	api.GET("/authorizations/:id/reviews", h.ListReviews)
	api.POST("/authorizations/:id/review", h.ReviewRequest,
		auth.RequireRole(auth.RoleHMOStaff, auth.RoleHMOAdmin))
	api.POST("/authorizations/validate", h.ValidateCode)
	api.POST("/service-deliveries", h.RecordDelivery,
		auth.RequireRole(auth.RoleDoctor, auth.RoleHospitalAdmin, auth.RolePharmacy, auth.RoleLab))
}

type createRequestBody struct {
	PatientID  uuid.UUID   `json:"patient_id"`
	HospitalID uuid.UUID   `json:"hospital_id"`
	ServiceIDs []uuid.UUID `json:"service_ids"`
	Diagnosis  string      `json:"diagnosis"`
	Notes      *string     `json:"notes"`
}

func (h *Handler) CreateRequest(c echo.Context) error {
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	actor := auth.ActorFromContext(c.Request().Context())

	req, err := h.svc.Create(c.Request().Context(), CreateInput{
		PatientID:   body.PatientID,
		HospitalID:  body.HospitalID,
		ServiceIDs:  body.ServiceIDs,
		Diagnosis:   body.Diagnosis,
		Notes:       body.Notes,
		RequestedBy: actor.UserID,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListRequests(c echo.Context) error {
	pg := pagination.FromContext(c)

	filter := ListFilter{Status: Status(c.QueryParam("status"))}
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		filter.PatientID = id
	}
	if v := c.QueryParam("hospital_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid hospital_id")
		}
		filter.HospitalID = id
	}
	if v := c.QueryParam("hmo_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid hmo_id")
		}
		filter.HMOID = id
	}

	actor := auth.ActorFromContext(c.Request().Context())
	if err := scopeFilter(&filter, actor); err != nil {
		return err
	}

	items, total, err := h.svc.List(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// scopeFilter restricts the listing to what the caller's role may see.
// Admins see everything; everyone else is pinned to their own patient,
// hospital, or HMO regardless of the query parameters they sent.
func scopeFilter(filter *ListFilter, actor auth.Actor) error {
	switch {
	case actor.HasRole(auth.RoleSystemAdmin):
		return nil
	case actor.HasRole(auth.RoleHMOStaff, auth.RoleHMOAdmin):
		id, err := uuid.Parse(actor.HMOID)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "no HMO associated with account")
		}
		filter.HMOID = id
	case actor.HasRole(auth.RoleDoctor, auth.RoleHospitalAdmin, auth.RolePharmacy, auth.RoleLab):
		id, err := uuid.Parse(actor.HospitalID)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "no hospital associated with account")
		}
		filter.HospitalID = id
	case actor.HasRole(auth.RolePatient):
		id, err := uuid.Parse(actor.PatientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, "no patient record associated with account")
		}
		filter.PatientID = id
	default:
		return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
	}
	return nil
}

func (h *Handler) GetRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	req, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	if err := authorizeRead(auth.ActorFromContext(c.Request().Context()), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

// authorizeRead enforces the same visibility rule as scopeFilter for a
// single record.
func authorizeRead(actor auth.Actor, req *AuthorizationRequest) error {
	switch {
	case actor.HasRole(auth.RoleSystemAdmin):
		return nil
	case actor.HasRole(auth.RoleHMOStaff, auth.RoleHMOAdmin):
		if actor.HMOID == req.HMOID.String() {
			return nil
		}
	case actor.HasRole(auth.RoleDoctor, auth.RoleHospitalAdmin, auth.RolePharmacy, auth.RoleLab):
		if actor.HospitalID == req.HospitalID.String() {
			return nil
		}
	case actor.HasRole(auth.RolePatient):
		if actor.PatientID == req.PatientID.String() {
			return nil
		}
	}
	return echo.NewHTTPError(http.StatusForbidden, "not allowed to view this authorization")
}

func (h *Handler) ListReviews(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	req, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	if err := authorizeRead(auth.ActorFromContext(c.Request().Context()), req); err != nil {
		return err
	}
	reviews, err := h.svc.ListReviews(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": reviews})
}

type reviewRequestBody struct {
	Status Status  `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *Handler) ReviewRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body reviewRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := auth.ActorFromContext(c.Request().Context())
	req, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	// Reviewers act only on requests addressed to their own HMO.
	if !actor.HasRole(auth.RoleSystemAdmin) && actor.HMOID != req.HMOID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "authorization belongs to another HMO")
	}

	reviewed, err := h.svc.Review(c.Request().Context(), ReviewInput{
		RequestID:  id,
		Decision:   body.Status,
		Notes:      body.Notes,
		ReviewerID: actor.UserID,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, reviewed.LastReview)
}

type validateBody struct {
	Code      string    `json:"code"`
	ServiceID uuid.UUID `json:"service_id"`
}

// ValidateCode always answers 200; an invalid code is a result the caller
// shows to the front desk, not an API failure.
func (h *Handler) ValidateCode(c echo.Context) error {
	var body validateBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if body.Code == "" || body.ServiceID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "code and service_id are required")
	}
	result, err := h.svc.Validate(c.Request().Context(), body.Code, body.ServiceID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) RecordDelivery(c echo.Context) error {
	var body validateBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if body.Code == "" || body.ServiceID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "code and service_id are required")
	}
	actor := auth.ActorFromContext(c.Request().Context())

	delivery, err := h.svc.RecordDelivery(c.Request().Context(), body.Code, body.ServiceID, actor.UserID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, delivery)
}

// mapError translates domain errors into HTTP responses. Validation
// failures carry their reason code so clients can branch without parsing
// messages.
func mapError(err error) error {
	if ve, ok := AsValidationError(err); ok {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "validation_failed",
			"reason":  ve.Reason,
			"message": ReasonMessage(ve.Reason),
		})
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "authorization not found")
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "authorization was already reviewed")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
