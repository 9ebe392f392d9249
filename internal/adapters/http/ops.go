package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/dkeye/Meet/internal/app/orch"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const opsSessionKey = "ops"

type opsHandlers struct {
	key     string
	orch    *orch.Orchestrator
	history ChatHistory
}

type LoginRequest struct {
	Key string `json:"key"`
}

func (h *opsHandlers) keyMatches(k string) bool {
	return subtle.ConstantTimeCompare([]byte(k), []byte(h.key)) == 1
}

// require lets a request through when no ops key is configured, when the
// session is logged in, or when X-Ops-Key carries the key.
func (h *opsHandlers) require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.key == "" {
			c.Next()
			return
		}
		if ok, _ := sessions.Default(c).Get(opsSessionKey).(bool); ok {
			c.Next()
			return
		}
		if k := c.GetHeader("X-Ops-Key"); k != "" && h.keyMatches(k) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "ops login required"})
	}
}

func (h *opsHandlers) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid key"})
		return
	}
	if h.key == "" || !h.keyMatches(req.Key) {
		log.Warn().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ops login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid key"})
		return
	}
	s := sessions.Default(c)
	s.Set(opsSessionKey, true)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged in"})
}

func (h *opsHandlers) logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	_ = s.Save()
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *opsHandlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

func (h *opsHandlers) room(c *gin.Context) {
	snap, ok := h.orch.RoomSnapshot(domain.MeetingID(c.Param("meetingId")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active room"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *opsHandlers) chat(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "chat history unavailable"})
		return
	}
	msgs, err := h.history.ChatHistory(c.Request.Context(), domain.MeetingID(c.Param("meetingId")))
	switch {
	case errors.Is(err, domain.ErrMeetingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("chat history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat history"})
	default:
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}
