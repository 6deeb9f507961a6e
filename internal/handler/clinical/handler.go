package clinical

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	CreateConsultation(ctx context.Context, actor model.Session, req *model.ConsultationRequest) (*model.MedicalConsultation, error)
	ListConsultations(ctx context.Context, actor model.Session, patientID, staffID string) ([]model.MedicalConsultation, error)
	GetConsultation(ctx context.Context, actor model.Session, id string) (*model.MedicalConsultation, error)
	SaveHistory(ctx context.Context, actor model.Session, patientID string, req *model.MedicalHistoryRequest) (*model.MedicalHistory, error)
	GetHistory(ctx context.Context, actor model.Session, patientID string) (*model.MedicalHistory, error)
	CreateExam(ctx context.Context, actor model.Session, req *model.MedicalExamRequest) (*model.MedicalExam, error)
	ListExams(ctx context.Context, actor model.Session, consultationID string) ([]model.MedicalExam, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinical := r.Group("")
	clinical.Use(middleware.RequireRole(model.RoleAdmin, model.RoleMedicalStaff))
	{
		clinical.POST("/consultations", h.CreateConsultation)
		clinical.GET("/consultations", h.ListConsultations)
		clinical.GET("/consultations/:id", h.GetConsultation)

		clinical.GET("/medical-histories/:patientId", h.GetHistory)
		clinical.PUT("/medical-histories/:patientId", h.SaveHistory)

		clinical.POST("/medical-exams", h.CreateExam)
		clinical.GET("/medical-exams", h.ListExams)
	}
}

func (h *Handler) CreateConsultation(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.ConsultationRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	mc, err := h.service.CreateConsultation(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, mc)
}

func (h *Handler) ListConsultations(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	list, err := h.service.ListConsultations(c.Request.Context(), actor, c.Query("patientId"), c.Query("medicalStaffId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) GetConsultation(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	mc, err := h.service.GetConsultation(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, mc)
}

func (h *Handler) GetHistory(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	mh, err := h.service.GetHistory(c.Request.Context(), actor, c.Param("patientId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, mh)
}

func (h *Handler) SaveHistory(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.MedicalHistoryRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	mh, err := h.service.SaveHistory(c.Request.Context(), actor, c.Param("patientId"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, mh)
}

func (h *Handler) CreateExam(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	var req model.MedicalExamRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	exam, err := h.service.CreateExam(c.Request.Context(), actor, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, exam)
}

func (h *Handler) ListExams(c *gin.Context) {
	actor, ok := handler.Actor(c)
	if !ok {
		return
	}
	exams, err := h.service.ListExams(c.Request.Context(), actor, c.Query("consultationId"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, exams)
}
