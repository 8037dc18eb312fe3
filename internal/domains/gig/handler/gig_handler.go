package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/domains/gig/service"
	"gigmarket-backend/internal/shared/middleware"
	"gigmarket-backend/internal/shared/response"
)

// ============================================================
// HANDLER STRUCT
// ============================================================
type GigHandler struct {
	gigs   service.GigService
	search service.SearchService
}

func NewGigHandler(gigs service.GigService, search service.SearchService) *GigHandler {
	return &GigHandler{
		gigs:   gigs,
		search: search,
	}
}

// ========== CREATE: POST /v1/gigs ==========
func (h *GigHandler) Create(c *gin.Context) {
	actorID, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req model.CreateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.gigs.CreateGig(c.Request.Context(), actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, view)
}

// ========== SEARCH: GET /v1/gigs ==========
func (h *GigHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var actor *uuid.UUID
	if id, ok := middleware.ActorID(c); ok {
		actor = &id
	}

	resp, err := h.search.Search(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, resp.Results, &response.Meta{
		Page:    resp.Pagination.Page,
		Limit:   resp.Pagination.Limit,
		Total:   resp.Pagination.Total,
		HasMore: resp.Pagination.HasMore,
	})
}

// ========== READ: GET /v1/gigs/:id ==========
func (h *GigHandler) GetByID(c *gin.Context) {
	id, ok := gigParam(c)
	if !ok {
		return
	}

	var actor *uuid.UUID
	if aid, found := middleware.ActorID(c); found {
		actor = &aid
	}

	view, err := h.gigs.GetGig(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// ========== UPDATE: PUT /v1/gigs/:id ==========
func (h *GigHandler) Update(c *gin.Context) {
	actorID, ok := middleware.RequireActor(c)
	if !ok {
		return
	}
	id, ok := gigParam(c)
	if !ok {
		return
	}

	var req model.UpdateGigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.gigs.UpdateGig(c.Request.Context(), actorID, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// ========== DELETE: DELETE /v1/gigs/:id ==========
func (h *GigHandler) Delete(c *gin.Context) {
	actorID, ok := middleware.RequireActor(c)
	if !ok {
		return
	}
	id, ok := gigParam(c)
	if !ok {
		return
	}

	if err := h.gigs.DeleteGig(c.Request.Context(), actorID, id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ============================================================
// LIFECYCLE: POST /v1/gigs/:id/{publish,start,complete,cancel}
// ============================================================

func (h *GigHandler) Publish(c *gin.Context) {
	actorID, ok := middleware.RequireActor(c)
	if !ok {
		return
	}
	id, ok := gigParam(c)
	if !ok {
		return
	}

	// Body is optional; an empty publish keeps the stored deadline.
	var req model.PublishGigRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	view, err := h.gigs.PublishGig(c.Request.Context(), actorID, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

func (h *GigHandler) Start(c *gin.Context) {
	h.lifecycle(c, h.gigs.StartGig)
}

func (h *GigHandler) Complete(c *gin.Context) {
	h.lifecycle(c, h.gigs.CompleteGig)
}

func (h *GigHandler) Cancel(c *gin.Context) {
	h.lifecycle(c, h.gigs.CancelGig)
}

func (h *GigHandler) lifecycle(
	c *gin.Context,
	action func(ctx context.Context, actorID, id uuid.UUID) (*model.GigView, error),
) {
	actorID, ok := middleware.RequireActor(c)
	if !ok {
		return
	}
	id, ok := gigParam(c)
	if !ok {
		return
	}

	view, err := action(c.Request.Context(), actorID, id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// ========== LIST: GET /v1/gigs/user/posted ==========
func (h *GigHandler) ListPosted(c *gin.Context) {
	actorID, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)

	views, pagination, err := h.gigs.ListPostedGigs(c.Request.Context(), actorID, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, views, &response.Meta{
		Page:    pagination.Page,
		Limit:   pagination.Limit,
		Total:   pagination.Total,
		HasMore: pagination.HasMore,
	})
}

// ============================================================
// PARAM HELPERS
// ============================================================

func gigParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid gig id")
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return page, limit
}
