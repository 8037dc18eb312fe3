package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/domains/gig/service"
	"gigmarket-backend/internal/shared/middleware"
	"gigmarket-backend/internal/shared/response"
)

type ApplicationHandler struct {
	applications service.ApplicationService
}

func NewApplicationHandler(applications service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
	}
}

// ========== APPLY: POST /v1/gigs/:id/apply ==========
func (h *ApplicationHandler) Apply(c *gin.Context) {
	actorID, ok := middleware.RequireActor(c)
	if !ok {
		return
	}
	gigID, ok := gigParam(c)
	if !ok {
		return
	}

	var req model.ApplyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	app, err := h.applications.Apply(c.Request.Context(), actorID, gigID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, app)
}

// ========== ACCEPT: PUT /v1/gigs/:id/applications/:appId/accept ==========
func (h *ApplicationHandler) Accept(c *gin.Context) {
	actorID, gigID, appID, ok := applicationParams(c)
	if !ok {
		return
	}

	view, err := h.applications.Accept(c.Request.Context(), actorID, gigID, appID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// ========== REJECT: PUT /v1/gigs/:id/applications/:appId/reject ==========
func (h *ApplicationHandler) Reject(c *gin.Context) {
	actorID, gigID, appID, ok := applicationParams(c)
	if !ok {
		return
	}

	if err := h.applications.Reject(c.Request.Context(), actorID, gigID, appID); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.ApplicationStatusRejected})
}

// ========== WITHDRAW: POST /v1/gigs/:id/applications/:appId/withdraw ==========
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	actorID, gigID, appID, ok := applicationParams(c)
	if !ok {
		return
	}

	if err := h.applications.Withdraw(c.Request.Context(), actorID, gigID, appID); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.ApplicationStatusWithdrawn})
}

// ========== LIST: GET /v1/gigs/user/applications ==========
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	actorID, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)

	items, pagination, err := h.applications.ListMyApplications(c.Request.Context(), actorID, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Page:    pagination.Page,
		Limit:   pagination.Limit,
		Total:   pagination.Total,
		HasMore: pagination.HasMore,
	})
}

func applicationParams(c *gin.Context) (actorID, gigID, appID uuid.UUID, ok bool) {
	actorID, ok = middleware.RequireActor(c)
	if !ok {
		return
	}
	gigID, ok = gigParam(c)
	if !ok {
		return
	}
	appID, err := uuid.Parse(c.Param("appId"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return actorID, gigID, appID, true
}
