package schedule

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, actor model.Session, req *model.WorkScheduleRequest) (*model.WorkSchedule, error)
	Update(ctx context.Context, actor model.Session, id string, req *model.WorkScheduleRequest) (*model.WorkSchedule, error)
	Delete(ctx context.Context, actor model.Session, id string) error
	Get(ctx context.Context, id string) (*model.WorkSchedule, error)
	List(ctx context.Context, staffID string) ([]model.WorkSchedule, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRole(model.RoleAdmin)

	schedules := r.Group("/work-schedules")
	{
		schedules.GET("", h.ListSchedules)
		schedules.GET("/:id", h.GetSchedule)
		schedules.POST("", admin, h.CreateSchedule)
		schedules.PUT("/:id", admin, h.UpdateSchedule)
		schedules.DELETE("/:id", admin, h.DeleteSchedule)
	}
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.WorkScheduleRequest
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

func (h *Handler) UpdateSchedule(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.WorkScheduleRequest
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

func (h *Handler) DeleteSchedule(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "work schedule deleted")
}

func (h *Handler) GetSchedule(c *gin.Context) {
	ws, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ws)
}

func (h *Handler) ListSchedules(c *gin.Context) {
	schedules, err := h.service.List(c.Request.Context(), c.Query("medicalStaffId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, schedules)
}
