package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yungbote/neurobridge-voice/internal/clients/openai"
	"github.com/yungbote/neurobridge-voice/internal/http/middleware"
	"github.com/yungbote/neurobridge-voice/internal/http/response"
	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
	"github.com/yungbote/neurobridge-voice/internal/services"
	"github.com/yungbote/neurobridge-voice/internal/voice/bridge"
	"github.com/yungbote/neurobridge-voice/internal/voice/protocol"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
	"github.com/yungbote/neurobridge-voice/internal/voice/tools"
)

const teardownTimeout = 3 * time.Second

type VoiceHandlerDeps struct {
	Log            *logger.Logger
	Identity       services.IdentityResolver
	Sessions       session.Store
	Realtime       openai.Realtime
	Dispatcher     *tools.Dispatcher
	Bridge         bridge.Config
	AllowedOrigins []string
}

// VoiceHandler owns the lifecycle of realtime voice connections.
type VoiceHandler struct {
	log        *logger.Logger
	identity   services.IdentityResolver
	sessions   session.Store
	realtime   openai.Realtime
	dispatcher *tools.Dispatcher
	bridgeCfg  bridge.Config
	upgrader   websocket.Upgrader

	root     context.Context
	stopRoot context.CancelFunc
}

func NewVoiceHandler(deps VoiceHandlerDeps) *VoiceHandler {
	root, stop := context.WithCancel(context.Background())
	origins := deps.AllowedOrigins
	return &VoiceHandler{
		log:        deps.Log.With("handler", "VoiceHandler"),
		identity:   deps.Identity,
		sessions:   deps.Sessions,
		realtime:   deps.Realtime,
		dispatcher: deps.Dispatcher,
		bridgeCfg:  deps.Bridge,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 << 10,
			WriteBufferSize: 16 << 10,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.AllowOrigin(origins, r.Header.Get("Origin"))
			},
		},
		root:     root,
		stopRoot: stop,
	}
}

// Close ends every live voice connection. Hijacked sockets are not tracked by
// http.Server.Shutdown.
func (h *VoiceHandler) Close() { h.stopRoot() }

// Realtime upgrades GET /api/voice/realtime/:token and bridges it until either
// side leaves.
func (h *VoiceHandler) Realtime(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	stop := context.AfterFunc(h.root, cancel)
	defer stop()

	td := ctxutil.GetTraceData(c.Request.Context())
	connID := uuid.NewString()
	if td != nil && td.ConnID != "" {
		connID = td.ConnID
	}
	log := h.log.With("session_id", connID)

	id, err := h.identity.Resolve(ctx, c.Param("token"))
	if err != nil {
		code := apierr.CodeUnauthorized
		msg := "Invalid or expired token"
		if apierr.CodeOf(err) == apierr.CodeConfiguration {
			code, msg = apierr.CodeConfiguration, "Voice sign-in is not configured"
		}
		log.Info("Voice connection refused", "code", code, "error", err)
		reject(conn, code, msg)
		return
	}
	if !id.Active {
		reject(conn, apierr.CodeUnauthorized, "Invalid or expired token")
		return
	}
	log = log.With("user_id", id.ID)
	if td != nil {
		td.UserID = id.ID
	}

	if !h.realtime.Configured() {
		log.Error("Voice connection refused: realtime API key missing")
		reject(conn, apierr.CodeConfiguration, "Voice assistant is not configured")
		return
	}

	sess, err := h.sessions.Create(ctx, id.ID, connID)
	if err != nil {
		code := apierr.CodeOf(err)
		msg := apierr.MessageOf(err)
		if code == apierr.CodeInternal || msg == "" {
			code, msg = apierr.CodeInternal, "Could not start a voice session"
		}
		log.Warn("Voice session not created", "code", code, "error", err)
		reject(conn, code, msg)
		return
	}
	defer func() {
		rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), teardownTimeout)
		defer rcancel()
		if err := h.sessions.Remove(rctx, id.ID, connID); err != nil {
			log.Warn("Voice session remove failed", "error", err)
		}
	}()

	upstream, err := h.realtime.Dial(ctx)
	if err != nil {
		log.Error("Realtime dial failed", "error", err)
		reject(conn, apierr.CodeUpstreamFailure, "Could not reach the voice assistant")
		return
	}

	update, err := protocol.SessionUpdate(h.realtime.SessionConfig(), id.DisplayName, h.dispatcher.Catalog().Tools)
	if err == nil {
		err = upstream.WriteMessage(websocket.TextMessage, update)
	}
	if err != nil {
		log.Error("Realtime session configuration failed", "error", err)
		_ = upstream.Close()
		reject(conn, apierr.CodeUpstreamFailure, "Could not configure the voice assistant")
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, protocol.Ready()); err != nil {
		_ = upstream.Close()
		_ = conn.Close()
		return
	}
	log.Info("Voice session started")

	err = bridge.New(h.bridgeCfg, log, h.dispatcher, h.sessions, id, sess, conn, upstream).Run(ctx)
	if err != nil {
		log.Warn("Voice session ended", "code", apierr.CodeOf(err), "error", err)
		return
	}
	log.Info("Voice session ended")
}

// SessionToken is kept for older clients. The websocket authenticates with
// the regular access token.
func (h *VoiceHandler) SessionToken(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"message":  "Use your existing authentication token for voice WebSocket connection",
		"endpoint": "/api/voice/realtime/{token}",
	})
}

// Tools serves the catalog advertised to the assistant.
func (h *VoiceHandler) Tools(c *gin.Context) {
	cat := h.dispatcher.Catalog()
	if cat == nil {
		response.RespondError(c, apierr.New(apierr.CodeConfiguration, "tool catalog unavailable"))
		return
	}
	response.RespondOK(c, cat)
}

// reject reports a fatal condition to a freshly upgraded socket and closes it.
func reject(conn *websocket.Conn, code apierr.Code, msg string) {
	deadline := time.Now().Add(2 * time.Second)
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.WriteMessage(websocket.TextMessage, protocol.ErrorFrame(string(code), msg))
	closeCode := websocket.ClosePolicyViolation
	if code == apierr.CodeUpstreamFailure || code == apierr.CodeConfiguration || code == apierr.CodeInternal {
		closeCode = websocket.CloseInternalServerErr
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(closeCode, string(code)), deadline)
	_ = conn.Close()
}
