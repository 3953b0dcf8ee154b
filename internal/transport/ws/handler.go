package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"docuchat/internal/app"
	"docuchat/internal/pkg/jwtutil"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades chat connections and wires a bridge per connection.
type Handler struct {
	chatService *app.ChatService
	assembler   Assembler
	resolver    Resolver
	messages    MessageStore
	audits      AuditPublisher
	history     HistoryInvalidator
	locks       *SessionLocks
	jwtSecret   string
	logger      *zap.Logger
}

func NewHandler(
	chatService *app.ChatService,
	assembler Assembler,
	resolver Resolver,
	messages MessageStore,
	audits AuditPublisher,
	history HistoryInvalidator,
	jwtSecret string,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatService: chatService,
		assembler:   assembler,
		resolver:    resolver,
		messages:    messages,
		audits:      audits,
		history:     history,
		locks:       NewSessionLocks(),
		jwtSecret:   jwtSecret,
		logger:      logger,
	}
}

// Serve handles GET /ws/chat?session_id=<uuid>&token=<jwt>. Browsers cannot
// set headers on websocket requests, so the token travels as a query
// parameter.
func (h *Handler) Serve(c *gin.Context) {
	claims, err := jwtutil.ParseToken(h.jwtSecret, c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
		return
	}

	session, err := h.chatService.GetOrCreateSessionByPublicID(claims.UserID, c.Query("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid session id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	bridge := NewBridge(
		session,
		h.assembler,
		h.resolver,
		h.messages,
		h.audits,
		h.history,
		newConnEmitter(conn),
		h.locks,
		h.logger,
	)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		bridge.Run(ctx)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			break
		}

		var evt InboundEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			// Malformed frames are dropped, mirroring the unknown-type rule.
			continue
		}
		if !bridge.Enqueue(evt) {
			h.logger.Warn("inbound queue full, dropping event",
				zap.Uint("session_id", session.ID),
			)
		}
	}

	// Client is gone: anything still resolving must not be persisted or
	// delivered.
	bridge.MarkClosed()
	cancel()
	<-done
}
