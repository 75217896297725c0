package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/learnhub/proctor-backend/internal/config"
	"github.com/learnhub/proctor-backend/internal/middleware"
	"github.com/learnhub/proctor-backend/internal/model"
	"github.com/learnhub/proctor-backend/internal/service"
	ws "github.com/learnhub/proctor-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams session lifecycle events to instructors watching a
// course. Events arrive over Redis PubSub from whichever server instance
// performed the transition, so monitoring works across replicas.
type MonitorHandler struct {
	rdb      *redis.Client
	courses  service.CourseDirectory
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, courses service.CourseDirectory, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:      rdb,
		courses:  courses,
		log:      log.With().Str("component", "monitor_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// MonitorCourse godoc
// WS /ws/v1/staff/courses/:courseId/monitor?token=...
func (h *MonitorHandler) MonitorCourse(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	courseID, ok := parseUUIDParam(c, "courseId")
	if !ok {
		return
	}

	actor := model.Actor{ID: claims.UserID, Role: claims.Role}
	if !service.RoleCan(actor.Role, service.ActionMonitorCourse) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	course, err := h.courses.GetByID(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !service.Authorize(actor, course.CreatedBy, service.ActionMonitorCourse) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("course_id", courseID.String()).
		Str("instructor_id", actor.ID.String()).
		Logger()
	wsLog.Info().Msg("Monitor connected")

	sub := h.rdb.Subscribe(c.Request.Context(), config.CacheKey.CourseMonitorChannel(courseID.String()))
	defer sub.Close()

	// Reader goroutine: services pings and detects client disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				return
			}
			if msg.Action == ws.ActionPing {
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-done:
			wsLog.Info().Msg("Monitor disconnected")
			return
		case m, okCh := <-ch:
			if !okCh {
				wsLog.Warn().Msg("Subscription closed")
				return
			}
			if err := ws.WriteTyped(conn, ws.SessionEventResponse{
				Event:   ws.EventSession,
				Payload: m.Payload,
			}); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing")
				return
			}
		}
	}
}
