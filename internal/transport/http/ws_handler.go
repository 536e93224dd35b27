package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dev-team-404/slea-ssem-sub001/internal/app"
	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/dev-team-404/slea-ssem-sub001/internal/logger"
	"github.com/gorilla/websocket"
)

// WSHandler streams a user's grade to a websocket: once on connect, again after
// every completed round, and on request.
type WSHandler struct {
	service  *app.AssessmentService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type statePayload struct {
	State string `json:"state"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and subscribes them to the grade feed.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.service.SubscribeGrades(userID)
	defer cancel()

	initial, ok := h.gradeMessage(r, userID)
	if !ok {
		_ = conn.WriteJSON(initial)
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches the connection for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "userId", userID, "error", err)
				// Unblock the read loop below.
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "grade", Payload: update}:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	queued := enqueue(send, writerDone, initial)
	for queued {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "refresh":
			msg, _ := h.gradeMessage(r, userID)
			queued = enqueue(send, writerDone, msg)
		default:
			queued = enqueue(send, writerDone, outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer. It reports false once the writer has quit.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

// gradeMessage computes the user's grade. ok is false for unknown users, which
// end the connection.
func (h *WSHandler) gradeMessage(r *http.Request, userID string) (outboundMessage[any], bool) {
	gr, err := h.service.ComputeGrade(r.Context(), userID)
	switch {
	case err == nil:
		return outboundMessage[any]{Type: "grade", Payload: gr}, true
	case errors.Is(err, domain.ErrNoResult):
		return outboundMessage[any]{Type: "state", Payload: statePayload{State: notAssessed}}, true
	case errors.Is(err, domain.ErrUserNotFound):
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}, false
	default:
		h.log.Error("ws grade computation failed", "userId", userID, "error", err)
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "internal error"}}, true
	}
}
