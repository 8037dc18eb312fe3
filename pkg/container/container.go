package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"gigmarket-backend/internal/config"
	infraCache "gigmarket-backend/internal/infrastructure/cache"
	"gigmarket-backend/internal/infrastructure/database"
	"gigmarket-backend/internal/infrastructure/geo"
	"gigmarket-backend/pkg/cache"
	"gigmarket-backend/pkg/jwt"

	gigHandler "gigmarket-backend/internal/domains/gig/handler"
	gigRepo "gigmarket-backend/internal/domains/gig/repository"
	gigService "gigmarket-backend/internal/domains/gig/service"
	userRepo "gigmarket-backend/internal/domains/user/repository"
	userService "gigmarket-backend/internal/domains/user/service"
)

// Container is the root of the dependency graph: infrastructure first,
// then repositories, services, handlers. Everything is a singleton.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Redis      *infraCache.RedisClient
	Cache      cache.Cache
	GeoIndex   geo.Index
	JWTManager *jwt.Manager

	GigRepo  gigRepo.GigRepository
	UserRepo userRepo.UserRepository

	GigService         gigService.GigService
	ApplicationService gigService.ApplicationService
	SearchService      gigService.SearchService
	UserService        *userService.UserService

	GigHandler         *gigHandler.GigHandler
	ApplicationHandler *gigHandler.ApplicationHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// Redis backs both the cache and the geo index. Losing it degrades
	// search and profile joins but never blocks startup.
	redisClient := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		log.Printf("redis connection failed (non-critical): %v", err)
	}
	c.Redis = redisClient
	c.Cache = infraCache.NewRedisCache(redisClient)
	c.GeoIndex = geo.NewRedisIndex(redisClient.Client)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	return c, nil
}

func (c *Container) initRepositories() {
	c.GigRepo = gigRepo.NewPostgresGigRepository(c.DB)
	c.UserRepo = userRepo.NewPostgresUserRepository(c.DB)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo, c.Cache)

	c.GigService = gigService.NewGigService(c.GigRepo, c.GeoIndex, c.UserService, c.Config.Search)
	c.ApplicationService = gigService.NewApplicationService(c.GigRepo, c.Config.Search)
	c.SearchService = gigService.NewSearchService(c.GigRepo, c.GeoIndex, c.UserService, c.Config.Search)
}

func (c *Container) initHandlers() {
	c.GigHandler = gigHandler.NewGigHandler(c.GigService, c.SearchService)
	c.ApplicationHandler = gigHandler.NewApplicationHandler(c.ApplicationService)
}

// Cleanup releases infrastructure connections in reverse order.
func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("redis close failed: %v", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
