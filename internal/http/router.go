package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/SoeMoeHtet18/telegram-bot/internal/config"
	"github.com/SoeMoeHtet18/telegram-bot/internal/http/handlers"
	"github.com/SoeMoeHtet18/telegram-bot/internal/http/middleware"

	_ "github.com/SoeMoeHtet18/telegram-bot/docs"
)

// Router builds the HTTP surface: the Telegram webhook, health, the admin
// ticket API and swagger. The returned handler is needed for shutdown.
func Router(cfg config.Config, tickets handlers.TicketReader, events handlers.EventHandler, logger zerolog.Logger) (*gin.Engine, *handlers.Handler) {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" || cfg.CORSAllowed == "" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSAllowed, ",")
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Tickets:        tickets,
		Events:         events,
		Validator:      validator.New(),
		Logger:         logger,
		AdminKey:       cfg.AdminKey,
		WebhookSecret:  cfg.WebhookSecret,
		HandlerTimeout: cfg.HandlerTimeout,
	}

	r.GET("/healthz", h.Healthz)
	r.POST("/telegram/webhook", h.Webhook)

	api := r.Group("/api")
	api.Use(middleware.AdminKey(cfg.AdminKey))
	{
		api.GET("/tickets", h.TicketsList)
		api.GET("/tickets/:id", h.TicketDetails)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r, h
}
