package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

// LearnerHeader carries the learner id when it is not given as a query parameter.
const LearnerHeader = "X-Learner-ID"

type WSHandler struct {
	service  *app.AssessmentService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.AssessmentService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type jumpPayload struct {
	Index int `json:"index"`
}

type selectPayload struct {
	QuestionIndex int `json:"questionIndex"`
	OptionIndex   int `json:"optionIndex"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type resultPayload struct {
	Status domain.Status      `json:"status"`
	Result domain.ScoreResult `json:"result"`
	Error  string             `json:"error,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

// ServeWS upgrades the request and runs one quiz session over the connection.
// Closing the socket before submission abandons the session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	learnerID := r.URL.Query().Get("learnerId")
	if learnerID == "" {
		learnerID = r.Header.Get(LearnerHeader)
	}
	if quizID == "" || learnerID == "" {
		http.Error(w, "missing quizId or learnerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := app.WithLearnerID(r.Context(), learnerID)
	session, err := h.service.Start(ctx, quizID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer h.service.Leave(ctx, session)

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("learner_id", learnerID).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		resultSent := false
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				batch := []outboundMessage[any]{{Type: "state", Payload: view}}
				if !resultSent && view.Result != nil && finished(view.Status) {
					resultSent = true
					batch = append(batch, outboundMessage[any]{Type: "result", Payload: resultPayload{
						Status: view.Status,
						Result: *view.Result,
						Error:  view.Error,
					}})
				}
				for _, msg := range batch {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(ctx, session, inbound); err != nil {
			select {
			case send <- errorMessage(err):
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

var errUnsupported = errors.New("unsupported message type")

func (h *WSHandler) dispatch(ctx context.Context, session *app.Session, inbound inboundMessage) error {
	switch inbound.Type {
	case "next":
		session.Next()
	case "previous":
		session.Previous()
	case "jump":
		var payload jumpPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid jump payload")
		}
		return session.JumpTo(payload.Index)
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid select payload")
		}
		return session.SetAnswer(payload.QuestionIndex, payload.OptionIndex)
	case "submit":
		// the outcome reaches the client through the session broadcast
		_, err := session.Submit(ctx)
		if errors.Is(err, domain.ErrPersistence) {
			return nil
		}
		return err
	default:
		return errUnsupported
	}
	return nil
}

func finished(status domain.Status) bool {
	return status == domain.StatusSubmitted || status == domain.StatusErrored
}
