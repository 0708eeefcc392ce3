package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentic-etl/etl-backend/pkg/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxChatMessageBytes caps a single inbound user turn.
	maxChatMessageBytes = 1 << 20
)

type ChatHandler struct {
	chatService service.ChatService
	upgrader    websocket.Upgrader
	metrics     *Metrics
	log         zerolog.Logger
}

// wsConn serializes writes to a websocket connection. The relay loop and
// the ping loop both write, and gorilla permits only one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// ServeWS upgrades the request and relays chat turns between the client
// and the agent. Each inbound text message starts one agent turn; every
// frame the agent emits during that turn is forwarded as a JSON message.
// Agent failures are reported as error frames and the socket stays open.
func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("session_id", uuid.New().String()).Logger()

	conn.SetReadLimit(maxChatMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ws := &wsConn{conn: conn}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return h.pingLoop(ctx, ws)
	})

	g.Go(func() error {
		// stops the ping loop once the client is gone
		defer cancel()
		defer conn.Close()

		return h.readLoop(ctx, log, conn, ws)
	})

	if err := g.Wait(); err != nil {
		log.Debug().Err(err).Msg("websocket session ended")
	}
}

func (h *ChatHandler) readLoop(ctx context.Context, log zerolog.Logger, conn *websocket.Conn, ws *wsConn) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("websocket read failed")

				return err
			}

			return nil
		}

		if msgType != websocket.TextMessage || len(data) == 0 {
			continue
		}

		h.metrics.ChatMessages.Inc()

		if err := h.relayTurn(ctx, ws, string(data)); err != nil {
			h.metrics.RelayErrors.Inc()
			log.Error().Err(err).Msg("agent turn failed")

			if werr := ws.writeJSON(service.ErrorMessage(err.Error())); werr != nil {
				return werr
			}
		}
	}
}

func (h *ChatHandler) relayTurn(ctx context.Context, ws *wsConn, userMessage string) error {
	frames, err := h.chatService.Stream(ctx, userMessage)
	if err != nil {
		return err
	}

	for frame := range frames {
		if err := ws.writeJSON(frame); err != nil {
			// Drain so the agent reader goroutine can finish the turn.
			for range frames {
			}

			return err
		}
	}

	return nil
}

func (h *ChatHandler) pingLoop(ctx context.Context, ws *wsConn) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := ws.ping(); err != nil {
				return err
			}
		}
	}
}

func (h *ChatHandler) ResetChat(ctx context.Context, _ *http.Request, _ any) (*ResetChatResponse, error) {
	if err := h.chatService.Reset(ctx); err != nil {
		return nil, err
	}

	return &ResetChatResponse{Status: "reset"}, nil
}

type ResetChatResponse struct {
	Status string `json:"status"`
}

// checkOrigin applies the same origin discipline to the socket that CORS
// applies to the HTTP routes. Requests without an Origin header are
// non-browser clients and pass.
func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		for _, allowed := range allowedOrigins {
			if allowed == "*" || strings.EqualFold(allowed, origin) {
				return true
			}
		}

		return false
	}
}

func NewChatHandler(chatService service.ChatService, allowedOrigins []string, metrics *Metrics, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		metrics: metrics,
		log:     log,
	}
}
