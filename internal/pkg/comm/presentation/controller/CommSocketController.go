package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/queue/port"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/infrastructure/realtime"
	comm "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/domain"
	"github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/application/usecase"
	repoAdapter "github.com/Spana-App/SPANA-SERVER-sub002/internal/pkg/comm/persistence/repository/adapter"
)

// CommSocketController owns the persistent connection: it binds the socket to
// exactly one identity in the registry, then multiplexes chat sends and call
// signaling frames until the client disconnects.
type CommSocketController struct {
	registry        *realtime.Registry
	relay           *realtime.Relay
	sendMessageUC   *usecase.SendMessageUseCase
	inflightTimeout time.Duration
}

func NewCommSocketController(pool *pgxpool.Pool, registry *realtime.Registry, relay *realtime.Relay, queue qport.Client) *CommSocketController {
	dir := repoAdapter.NewPgDirectoryRepository(pool)
	repo := repoAdapter.NewPgMessageRepository(pool)
	return &CommSocketController{
		registry:        registry,
		relay:           relay,
		sendMessageUC:   usecase.NewSendMessageUseCase(dir, repo, relay, queue),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type      string          `json:"type"`
	ToID      string          `json:"to_id,omitempty"`
	BookingID string          `json:"booking_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id,omitempty"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until the client disconnects.
func (ctl *CommSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identityID(c)
		if userID == "" {
			// Fallback for clients that cannot set headers on the ws handshake.
			userID = c.Query("user_id")
		}
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.registry.Bind(conn)
		defer func() {
			// Unbind before teardown so no relay attempt reaches a dead socket.
			ctl.registry.Unbind(conn.ID)
			if !ctl.registry.Online(userID) {
				ctl.relay.DropPeer(userID)
			}
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "chat":
				ctl.handleChat(c, conn, userID, frame)
			case "offer", "answer", "ice", "end", "typing":
				ctl.handleSignal(conn, userID, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

// handleChat runs the dual path: the use case persists first and relays live
// as a side effect; the sender gets a synchronous ack or denial either way.
func (ctl *CommSocketController) handleChat(c *gin.Context, conn *realtime.Connection, userID string, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	in := usecase.SendMessageInput{SenderID: userID, Content: frame.Content}
	if frame.ToID != "" {
		in.ReceiverID = &frame.ToID
	}
	if frame.BookingID != "" {
		in.BookingID = &frame.BookingID
	}

	msg, err := ctl.sendMessageUC.Execute(ctx, in)
	if err != nil {
		ctl.replyUseCaseError(conn, err)
		return
	}

	if payload, err := json.Marshal(ackFrame{Type: "sent", MessageID: msg.ID}); err == nil {
		_ = conn.Send(payload)
	}
}

// handleSignal routes one ephemeral envelope. Unlike chat, an offline peer is
// surfaced to the caller: a call cannot proceed without the other end.
func (ctl *CommSocketController) handleSignal(conn *realtime.Connection, userID string, frame inboundFrame) {
	if frame.ToID == "" {
		ctl.replyError(conn, "bad_request", "to_id is required")
		return
	}
	err := ctl.relay.Signal(realtime.Envelope{
		Type:      realtime.EnvelopeType(frame.Type),
		FromID:    userID,
		ToID:      frame.ToID,
		BookingID: frame.BookingID,
		Payload:   frame.Payload,
	})
	if errors.Is(err, realtime.ErrOffline) {
		ctl.replyError(conn, "unavailable", "recipient has no open connection")
		return
	}
	if err != nil {
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *CommSocketController) replyUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, comm.ErrForbidden):
		ctl.replyError(conn, "forbidden", comm.DenyReason(err))
	case errors.Is(err, comm.ErrUnauthorized):
		ctl.replyError(conn, "unauthorized", "missing authenticated identity")
	case errors.Is(err, comm.ErrNotFound):
		ctl.replyError(conn, "not_found", err.Error())
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *CommSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Type: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
