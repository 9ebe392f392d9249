package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Meet/internal/adapters/signal"
	"github.com/dkeye/Meet/internal/app/orch"
	"github.com/dkeye/Meet/internal/auth"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionName = "MeetSessions"

// ChatHistory is the read side of the meeting store used by ops endpoints.
type ChatHistory interface {
	ChatHistory(ctx context.Context, id domain.MeetingID) ([]domain.ChatMessage, error)
}

type Deps struct {
	Orch    *orch.Orchestrator
	Auth    *auth.Authenticator
	History ChatHistory
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 12 * 3600})
	r.Use(sessions.Sessions(sessionName, store))

	ctrl := signal.NewSignalWSController(deps.Orch, signal.OptionsFrom(cfg))
	ops := &opsHandlers{key: cfg.OpsKey, orch: deps.Orch, history: deps.History}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"connections": deps.Orch.Registry.Count(),
			"rooms":       len(deps.Orch.Rooms.List()),
		})
	})

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		user, err := deps.Auth.Authenticate(c.Request.Context(), c.Request)
		if err != nil {
			status := auth.StatusFor(err)
			log.Warn().Err(err).Str("module", "adapters.http").Int("status", status).Str("remote", c.ClientIP()).Msg("ws auth rejected")
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}
		ctrl.HandleSignal(ctx, c, user)
	})

	api.POST("/ops/login", ops.login)
	api.POST("/ops/logout", ops.logout)

	rooms := api.Group("/rooms", ops.require())
	rooms.GET("", ops.listRooms)
	rooms.GET("/:meetingId", ops.room)
	rooms.GET("/:meetingId/chat", ops.chat)

	log.Info().Str("module", "adapters.http").Bool("ops_open", cfg.OpsKey == "").Msg("router setup")
	return r
}
