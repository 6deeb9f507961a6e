package staff

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, actor model.Session, req *model.MedicalStaffRequest) (*model.MedicalStaff, error)
	Update(ctx context.Context, actor model.Session, id string, req *model.MedicalStaffRequest) (*model.MedicalStaff, error)
	Delete(ctx context.Context, actor model.Session, id string) error
	Get(ctx context.Context, id string) (*model.MedicalStaff, error)
	List(ctx context.Context, specialtyID string) ([]model.MedicalStaff, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRole(model.RoleAdmin)

	staff := r.Group("/medical-staff")
	{
		staff.GET("", h.ListStaff)
		staff.GET("/:id", h.GetStaff)
		staff.POST("", admin, h.CreateStaff)
		staff.PUT("/:id", admin, h.UpdateStaff)
		staff.DELETE("/:id", admin, h.DeleteStaff)
	}
}

func (h *Handler) CreateStaff(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.MedicalStaffRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	m, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, m)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.MedicalStaffRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	m, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, m)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "medical staff deleted")
}

func (h *Handler) GetStaff(c *gin.Context) {
	m, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, m)
}

func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.service.List(c.Request.Context(), c.Query("specialtyId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, staff)
}
