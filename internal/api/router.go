package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/stay-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/file"
	fileHttp "github.com/nekogravitycat/stay-booking-backend/internal/file/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/property"
	propertyHttp "github.com/nekogravitycat/stay-booking-backend/internal/property/http"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/stay-booking-backend/internal/user/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction      bool
	ProdOrigins       []string
	RequestTimeout    time.Duration
	MaxImageSizeBytes int64
	Logger            logrus.FieldLogger

	UserService     user.Service
	PropertyService property.Service
	BookingService  booking.Service
	FileService     file.Service
	JWTManager      *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: Logs request information through logrus.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	// - Timeout: Bounds the context handed to services.
	r.Use(RequestLogger(cfg.Logger), gin.Recovery(), Timeout(cfg.RequestTimeout))

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = cfg.ProdOrigins
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	// authMiddleware: Validates the JWT and loads the caller's current role.
	authMiddleware := auth.AuthRequired(cfg.JWTManager, cfg.UserService)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	fileHandler := fileHttp.NewHandler(cfg.FileService, cfg.Logger)
	propertyHandler := propertyHttp.NewHandler(cfg.PropertyService, fileHandler, cfg.MaxImageSizeBytes)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		propertyHttp.RegisterRoutes(v1, propertyHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler)
	}

	return r
}
