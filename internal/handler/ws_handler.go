package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dwiyanr/examflow/internal/engine"
	"github.com/dwiyanr/examflow/internal/model"
	"github.com/dwiyanr/examflow/internal/record"
	"github.com/dwiyanr/examflow/internal/service"
	"github.com/dwiyanr/examflow/internal/store"
	ws "github.com/dwiyanr/examflow/internal/websocket"
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

// wsConn serializes writes to a WebSocket connection. The session ticker
// and the read loop both push events, and gorilla allows one writer at a
// time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) send(event ws.Event, data interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = ws.WriteJSON(w.conn, event, data)
}

func (w *wsConn) sendError(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = ws.WriteError(w.conn, msg)
}

// WSHandler handles the WebSocket exam-taking stream. Each connection owns
// one delivery session.
type WSHandler struct {
	exams    *service.ExamService
	attempts store.AttemptStore
	recorder record.ResultRecorder
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	exams *service.ExamService,
	attempts store.AttemptStore,
	recorder record.ResultRecorder,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		exams:    exams,
		attempts: attempts,
		recorder: recorder,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exams/:exam_id/stream?candidate_id=...
// Upgrades to WebSocket and drives one exam session: answer capture,
// navigation, countdown ticks, and submission.
func (h *WSHandler) ExamStream(c *gin.Context) {
	examID := c.Param("exam_id")
	candidateID := c.Query("candidate_id")
	if candidateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "candidate_id is required"})
		return
	}

	exam, err := h.exams.Get(c.Request.Context(), examID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrExamNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "exam not available"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("exam_id", examID).
		Str("candidate_id", candidateID).
		Logger()

	out := &wsConn{conn: conn}

	sess, err := engine.NewSession(c.Request.Context(), exam, candidateID, h.attempts, h.recorder, wsLog)
	if err != nil {
		out.sendError("could not start session: " + err.Error())
		return
	}
	defer sess.Close()

	sess.SetNotify(func(ev engine.Event) {
		switch ev.Type {
		case engine.EventTick:
			out.send(ws.EventTick, gin.H{
				"current_index": ev.CurrentIndex,
				"seconds_left":  ev.SecondsLeft,
			})
		case engine.EventAutoAdvance:
			out.send(ws.EventAutoAdvance, gin.H{
				"current_index": ev.CurrentIndex,
				"seconds_left":  ev.SecondsLeft,
			})
		case engine.EventSubmitted:
			out.send(ws.EventGraded, gradedBody(ev.Result))
		}
	})
	sess.StartTicker()

	wsLog.Info().Msg("Candidate connected")
	out.send(ws.EventState, sess.State())

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(out, sess, &msg)
		case ws.ActionNext:
			h.handleNavigate(out, sess.Next(context.Background()), sess)
		case ws.ActionPrevious:
			h.handleNavigate(out, sess.Previous(context.Background()), sess)
		case ws.ActionSubmit:
			h.handleSubmit(out, sess)
		case ws.ActionState:
			out.send(ws.EventState, sess.State())
		case ws.ActionPing:
			out.send(ws.EventPong, nil)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			out.sendError("unknown action: " + string(msg.Action))
		}
	}
}

// handleAnswer records one answer and acknowledges the write.
func (h *WSHandler) handleAnswer(out *wsConn, sess *engine.Session, msg *ws.RequestPayload) {
	if msg.QID == "" || msg.OptionID == "" {
		out.sendError("q_id and option_id are required")
		return
	}

	if err := sess.SelectAnswer(context.Background(), msg.QID, msg.OptionID); err != nil {
		out.sendError(err.Error())
		return
	}
	out.send(ws.EventSaved, gin.H{"q_id": msg.QID})
}

func (h *WSHandler) handleNavigate(out *wsConn, err error, sess *engine.Session) {
	if err != nil {
		out.sendError(err.Error())
		return
	}
	out.send(ws.EventState, sess.State())
}

// handleSubmit finishes the attempt. The first submission is announced via
// the session's own graded event; repeated submits just replay the result.
func (h *WSHandler) handleSubmit(out *wsConn, sess *engine.Session) {
	already := sess.Result() != nil
	res, err := sess.Submit(context.Background())
	if err != nil {
		out.sendError(err.Error())
		return
	}
	if already {
		out.send(ws.EventGraded, gradedBody(res))
	}
}

func gradedBody(res *model.SubmissionResult) gin.H {
	return gin.H{
		"status":         "completed",
		"obtained_marks": res.ObtainedMarks,
		"total_marks":    res.TotalMarks,
	}
}
