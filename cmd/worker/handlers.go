package main

import (
	"github.com/hibiken/asynq"

	gigJob "gigmarket-backend/internal/domains/gig/job"
	"gigmarket-backend/internal/shared"
	"gigmarket-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	expireSweep *gigJob.ExpireSweepHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		expireSweep: gigJob.NewExpireSweepHandler(c.GigService),
	}
}

func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(shared.TypeGigExpireSweep, r.expireSweep)
}
