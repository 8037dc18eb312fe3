package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gigmarket-backend/internal/domains/user/repository"
	"gigmarket-backend/internal/shared"
	"gigmarket-backend/pkg/cache"
	"gigmarket-backend/pkg/logger"
)

const (
	userCacheKeyFmt = "user:basic:%s"
	userCacheTTL    = 5 * time.Minute
)

// UserService resolves poster and applicant display info. It satisfies
// the gig domain's UserDirectory contract.
type UserService struct {
	repo  repository.UserRepository
	cache cache.Cache
}

func NewUserService(repo repository.UserRepository, c cache.Cache) *UserService {
	return &UserService{
		repo:  repo,
		cache: c,
	}
}

// GetUser is cache-aside: profiles change rarely, so a short TTL keeps
// the join cheap without an invalidation protocol.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*shared.UserBasicInfo, error) {
	key := fmt.Sprintf(userCacheKeyFmt, id)

	var cached shared.UserBasicInfo
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("user cache read failed", map[string]interface{}{
				"user_id": id.String(),
				"error":   err.Error(),
			})
		} else if hit {
			return &cached, nil
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	info := &shared.UserBasicInfo{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, info, userCacheTTL); err != nil {
			logger.Warn("user cache write failed", map[string]interface{}{
				"user_id": id.String(),
				"error":   err.Error(),
			})
		}
	}

	return info, nil
}
