package web

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/draftsmith/draftsmith"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketWriter serializes JSON writes onto one connection.
type WebSocketWriter struct {
	Conn   *websocket.Conn
	Logger *log.Logger
	mu     sync.Mutex
}

func (w *WebSocketWriter) WriteEvent(event interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(event)
}

func (w *WebSocketWriter) WriteError(message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(map[string]string{"type": "error", "error": message})
}

// stageEvent is pushed to the client as the turn moves through its stages.
type stageEvent struct {
	Type   string `json:"type"`
	Stage  string `json:"stage"`
	Detail string `json:"detail,omitempty"`
}

// resultEvent carries the finished turn's result.
type resultEvent struct {
	Type   string            `json:"type"`
	Result draftsmith.Result `json:"result"`
}

// GenerateWS streams per-stage progress for each requested turn. The client
// sends DiagramRequest frames and receives stage events followed by one
// result event per request.
func (ctrl *Controller) GenerateWS(c *gin.Context) {
	conversationID := c.Param("conversationID")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		ctrl.logger.Printf("Failed to upgrade connection for %s: %v", conversationID, err)
		return
	}
	defer conn.Close()

	logger := log.New(os.Stdout, fmt.Sprintf("[WS %s] ", conversationID), log.LstdFlags)
	writer := &WebSocketWriter{Conn: conn, Logger: logger}
	session := ctrl.session(conversationID)

	for {
		var req DiagramRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Printf("Read error: %v", err)
			}
			return
		}
		if req.Message == "" {
			writer.WriteError("message is required")
			continue
		}

		progress := func(stage, detail string) {
			if err := writer.WriteEvent(stageEvent{Type: "stage", Stage: stage, Detail: detail}); err != nil {
				logger.Printf("Failed to write stage event: %v", err)
			}
		}

		result, err := session.Run(c.Request.Context(), req.Message, progress)
		if err != nil {
			logger.Printf("Turn failed: %v", err)
			writer.WriteError(err.Error())
			continue
		}

		if err := writer.WriteEvent(resultEvent{Type: "result", Result: result}); err != nil {
			logger.Printf("Failed to write result: %v", err)
			return
		}
	}
}
