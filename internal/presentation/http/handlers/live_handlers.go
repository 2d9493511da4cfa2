package handlers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/metrics"
	"github.com/fundroad/fundroad-go/internal/infrastructure/security"
	"github.com/fundroad/fundroad-go/internal/presentation/http/middleware"
)

const (
	liveSessionTokenBytes = 24
	liveSendBuffer        = 32
	liveMaxMessage        = 4096
	livePongWaitMult      = 2
)

// LiveConfig tunes the websocket keepalive.
type LiveConfig struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// LiveHandlers upgrade /api/v1/journey/live to a websocket driven by a
// services.LiveSession.
type LiveHandlers struct {
	journeyService    *services.JourneyService
	navigationService *services.NavigationService
	metrics           *metrics.Registry
	logger            *logging.ChanneledLogger
	config            LiveConfig
	upgrader          websocket.Upgrader
}

// NewLiveHandlers creates live websocket handlers
func NewLiveHandlers(journeyService *services.JourneyService, navigationService *services.NavigationService, registry *metrics.Registry, logger *logging.ChanneledLogger, config LiveConfig) *LiveHandlers {
	h := &LiveHandlers{
		journeyService:    journeyService,
		navigationService: navigationService,
		metrics:           registry,
		logger:            logger,
		config:            config,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts same-host requests, requests without an Origin header
// and the configured CORS origins.
func (h *LiveHandlers) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	return slices.Contains(h.config.AllowedOrigins, origin)
}

// Serve handles GET /api/v1/journey/live. A connection without a session id
// is given a fresh random token, returned in the X-FundRoad-Session-ID
// response header.
func (h *LiveHandlers) Serve(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		token, err := security.GenerateSecureToken(liveSessionTokenBytes)
		if err != nil {
			h.logger.Session().Error("Failed to generate live session id", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start live session"})
			return
		}
		sessionID = token
	}
	userID := middleware.GetUserID(c)

	responseHeader := http.Header{}
	responseHeader.Set(middleware.SessionHeader, sessionID)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, responseHeader)
	if err != nil {
		h.logger.Session().Warn("Websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.LiveSessionOpened()
		defer h.metrics.LiveSessionClosed()
	}
	h.logger.Session().Info("Live session opened", "sessionId", h.logger.SanitizeSessionID(sessionID), "authenticated", userID != "")

	out := make(chan services.LiveServerMessage, liveSendBuffer)
	stop := make(chan struct{})
	writerDone := make(chan struct{})

	publish := func(msg services.LiveServerMessage) {
		select {
		case out <- msg:
		case <-writerDone:
		}
	}

	// Close cancels the session; the hijacked request context is not relied on.
	session := services.NewLiveSession(context.WithoutCancel(c.Request.Context()), h.journeyService, h.navigationService, h.logger, userID, sessionID, publish)

	go h.writeLoop(conn, out, stop, writerDone)

	h.readLoop(conn, session)

	session.Close()
	close(stop)
	<-writerDone
	h.logger.Session().Info("Live session closed", "sessionId", h.logger.SanitizeSessionID(sessionID), "generation", session.Generation())
}

func (h *LiveHandlers) readLoop(conn *websocket.Conn, session *services.LiveSession) {
	pongWait := h.config.PingInterval * livePongWaitMult
	conn.SetReadLimit(liveMaxMessage)
	if pongWait > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		var msg services.LiveClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Session().Warn("Live session read failed", "error", err.Error())
			}
			return
		}
		if err := session.Handle(msg); err != nil {
			h.logger.Session().Debug("Live message rejected", "type", msg.Type, "error", err.Error())
		}
	}
}

// writeLoop owns every write on conn. It drains out until stop is closed or a
// write fails, and pings at the configured interval.
func (h *LiveHandlers) writeLoop(conn *websocket.Conn, out <-chan services.LiveServerMessage, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var ping <-chan time.Time
	if h.config.PingInterval > 0 {
		ticker := time.NewTicker(h.config.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case msg := <-out:
			h.setWriteDeadline(conn)
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Session().Debug("Live session write failed", "error", err.Error())
				return
			}
		case <-ping:
			h.setWriteDeadline(conn)
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-stop:
			h.setWriteDeadline(conn)
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (h *LiveHandlers) setWriteDeadline(conn *websocket.Conn) {
	if h.config.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	}
}
