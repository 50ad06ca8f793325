package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/coursemart-backend/internal/middleware"
	"github.com/stemsi/coursemart-backend/internal/repository"
	"github.com/stemsi/coursemart-backend/internal/service"
	ws "github.com/stemsi/coursemart-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// LiveHandler streams graded attempts of a quiz to its owner.
type LiveHandler struct {
	quizService *service.QuizService
	events      *repository.AttemptEventBus
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(quizService *service.QuizService, events *repository.AttemptEventBus, log zerolog.Logger, allowedOrigins []string) *LiveHandler {
	return &LiveHandler{
		quizService: quizService,
		events:      events,
		log:         log.With().Str("component", "live_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// QuizLiveFeed godoc
// WS /ws/v1/instructor/quizzes/:quiz_id/live?token=...
// Sends a results snapshot, then one message per graded attempt.
func (h *LiveHandler) QuizLiveFeed(c *gin.Context) {
	claims := middleware.GetClaims(c)

	quizID, ok := uuidParam(c, "quiz_id")
	if !ok {
		return
	}

	// Checked before the upgrade so failures get a plain HTTP status.
	results, err := h.quizService.Results(c.Request.Context(), claims.UserID, quizID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("instructor_id", claims.UserID).
		Str("quiz_id", quizID.String()).
		Logger()
	wsLog.Info().Msg("Instructor connected to live feed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.events.Subscribe(ctx, quizID)
	defer sub.Close()
	// Confirm the subscription before sending the snapshot.
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Live subscription failed")
		_ = ws.WriteError(conn, "live feed unavailable")
		return
	}

	if err := ws.WriteTyped(conn, ws.SnapshotResponse{
		Event:         ws.EventSnapshot,
		TotalAttempts: results.TotalAttempts,
		Students:      results.Students,
	}); err != nil {
		return
	}

	pings := make(chan struct{}, 1)
	go h.readLoop(conn, wsLog, cancel, pings)
	h.writeLoop(ctx, conn, wsLog, sub.Channel(), pings)
}

// readLoop owns all reads on conn. It answers client pings through the
// write loop and cancels ctx once the peer goes away.
func (h *LiveHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, cancel context.CancelFunc, pings chan<- struct{}) {
	defer cancel()
	ws.KeepAlive(conn)

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		if msg.Action == ws.ActionPing {
			select {
			case pings <- struct{}{}:
			default:
			}
		}
	}
}

// writeLoop owns all writes on conn.
func (h *LiveHandler) writeLoop(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, messages <-chan *redis.Message, pings <-chan struct{}) {
	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			event, err := repository.DecodeAttemptEvent(msg)
			if err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed attempt event")
				continue
			}
			if err := ws.WriteTyped(conn, ws.AttemptRecordedResponse{Event: ws.EventAttemptRecorded, Attempt: event}); err != nil {
				return
			}
		}
	}
}
