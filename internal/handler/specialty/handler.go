package specialty

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, actor model.Session, req *model.SpecialtyRequest) (*model.Specialty, error)
	Update(ctx context.Context, actor model.Session, id string, req *model.SpecialtyRequest) (*model.Specialty, error)
	Delete(ctx context.Context, actor model.Session, id string) error
	Get(ctx context.Context, id string) (*model.Specialty, error)
	List(ctx context.Context) ([]model.Specialty, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRole(model.RoleAdmin)

	specialties := r.Group("/specialties")
	{
		specialties.GET("", h.ListSpecialties)
		specialties.GET("/:id", h.GetSpecialty)
		specialties.POST("", admin, h.CreateSpecialty)
		specialties.PUT("/:id", admin, h.UpdateSpecialty)
		specialties.DELETE("/:id", admin, h.DeleteSpecialty)
	}
}

func (h *Handler) CreateSpecialty(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.SpecialtyRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	sp, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, sp)
}

func (h *Handler) UpdateSpecialty(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.SpecialtyRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	sp, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, sp)
}

func (h *Handler) DeleteSpecialty(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "specialty deleted")
}

func (h *Handler) GetSpecialty(c *gin.Context) {
	sp, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, sp)
}

func (h *Handler) ListSpecialties(c *gin.Context) {
	specialties, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, specialties)
}
