package shift

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, actor model.Session, req *model.WorkShiftRequest) (*model.WorkShift, error)
	Update(ctx context.Context, actor model.Session, id string, req *model.WorkShiftRequest) (*model.WorkShift, error)
	Delete(ctx context.Context, actor model.Session, id string) error
	Get(ctx context.Context, id string) (*model.WorkShift, error)
	List(ctx context.Context, activeOnly bool) ([]model.WorkShift, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRole(model.RoleAdmin)

	shifts := r.Group("/work-shifts")
	{
		shifts.GET("", h.ListShifts)
		shifts.GET("/:id", h.GetShift)
		shifts.POST("", admin, h.CreateShift)
		shifts.PUT("/:id", admin, h.UpdateShift)
		shifts.DELETE("/:id", admin, h.DeleteShift)
	}
}

func (h *Handler) CreateShift(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.WorkShiftRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	ws, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, ws)
}

func (h *Handler) UpdateShift(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.WorkShiftRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	ws, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ws)
}

func (h *Handler) DeleteShift(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "work shift deleted")
}

func (h *Handler) GetShift(c *gin.Context) {
	ws, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ws)
}

func (h *Handler) ListShifts(c *gin.Context) {
	activeOnly := false
	if v := c.Query("active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Validation(apperrors.FieldError{Field: "active", Message: "must be true or false"}))
			return
		}
		activeOnly = parsed
	}
	shifts, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, shifts)
}
