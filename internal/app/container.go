package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/api"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	"github.com/nekogravitycat/stay-booking-backend/internal/config"
	"github.com/nekogravitycat/stay-booking-backend/internal/file"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
	"github.com/nekogravitycat/stay-booking-backend/internal/worker"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router           *gin.Engine
	UserService      user.Service
	CompletionWorker *worker.CompletionWorker

	redis *redis.Client
}

// NewContainer initializes all modules and returns the container.
func NewContainer(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log logrus.FieldLogger) (*Container, error) {
	// Init Components
	passwordHasher, err := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)

	store, err := storage.NewLocalStorage(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init file storage: %w", err)
	}

	c := &Container{}

	// User Module
	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, passwordHasher, log)

	// File Module
	fileRepo := file.NewRepository(pool)
	fileService := file.NewService(fileRepo, store, log)

	// Property Module
	var cache property.CacheClient
	if cfg.CacheEnabled() {
		c.redis = newRedisClient(ctx, cfg, log)
		if c.redis != nil {
			cache = c.redis
		}
	}
	propertyService, bookingProperties := newPropertyServices(property.NewPgxRepository(pool), cache, cfg.PropertyCacheTTL, log)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(pool)
	bookingService := booking.NewService(bookingRepo, bookingProperties, log)

	// Router
	c.Router = api.NewRouter(api.Config{
		IsProduction:      cfg.IsProduction,
		ProdOrigins:       cfg.ProdOrigins,
		RequestTimeout:    cfg.RequestTimeout,
		MaxImageSizeBytes: cfg.MaxImageSizeBytes,
		Logger:            log,
		UserService:       userService,
		PropertyService:   propertyService,
		BookingService:    bookingService,
		FileService:       fileService,
		JWTManager:        jwtManager,
	})
	c.UserService = userService
	c.CompletionWorker = worker.NewCompletionWorker(bookingService, cfg.CompletionInterval, log)

	return c, nil
}

// newPropertyServices returns the service used by the HTTP handlers and the one
// the booking core reads from. Only the former goes through the cache; bookings
// must see the current active flag, rate and capacity.
func newPropertyServices(repo property.Repository, cache property.CacheClient, ttl time.Duration, log logrus.FieldLogger) (public, bookings property.Service) {
	bookings = property.NewService(repo, log)
	if cache == nil {
		return bookings, bookings
	}
	return property.NewService(property.NewCachedRepository(repo, cache, ttl, log), log), bookings
}

// newRedisClient connects to the property cache. An unreachable server disables caching.
func newRedisClient(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable, property cache disabled")
		_ = client.Close()
		return nil
	}
	log.WithField("addr", cfg.RedisAddr).Info("property cache enabled")
	return client
}

// Close releases connections owned by the container.
func (c *Container) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
