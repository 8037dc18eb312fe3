package job

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"gigmarket-backend/internal/domains/gig/service"
	"gigmarket-backend/internal/shared"
	"gigmarket-backend/pkg/logger"
)

// ExpireSweepHandler runs the periodic half of expiry: it persists
// posted/active -> expired for every gig past its deadline. Reads apply
// the same rule lazily, so a missed run never shows stale statuses.
type ExpireSweepHandler struct {
	gigs service.GigService
}

func NewExpireSweepHandler(gigs service.GigService) *ExpireSweepHandler {
	return &ExpireSweepHandler{
		gigs: gigs,
	}
}

func (h *ExpireSweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ExpireSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Unmarshal expire sweep payload failed due to ", err)
		return err
	}

	swept, err := h.gigs.ExpireDueGigs(ctx)
	if err != nil {
		logger.Error("Expire sweep failed due to ", err)
		return err
	}

	log.Info().
		Int64("swept", swept).
		Msg("Expire sweep finished")

	return nil
}
