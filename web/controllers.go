package web

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/draftsmith/draftsmith"
	"github.com/draftsmith/draftsmith/stores"
)

// DiagramRequest is the inbound request body for generation endpoints.
type DiagramRequest struct {
	Message string `json:"message" binding:"required"`
	// HistoryJSON carries caller-held history for the stateless endpoint.
	HistoryJSON string `json:"history_json,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// Controller exposes the diagram agent over HTTP. One Session per
// conversation id serializes turns within a conversation while separate
// conversations run concurrently.
type Controller struct {
	agent  *draftsmith.Agent
	store  stores.MessageStore
	traces stores.TraceStore
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*draftsmith.Session
}

// NewController creates a controller from the configuration.
func NewController(config *draftsmith.Config) *Controller {
	return &Controller{
		agent:    draftsmith.NewAgent(config),
		store:    config.Store,
		traces:   config.Traces,
		logger:   log.New(os.Stdout, "[WEB] ", log.LstdFlags),
		sessions: make(map[string]*draftsmith.Session),
	}
}

// RegisterRoutes wires the controller's endpoints onto the group.
func (ctrl *Controller) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", ctrl.Health)
	r.POST("/diagrams", ctrl.GenerateStateless)
	r.POST("/diagrams/:conversationID", ctrl.Generate)
	r.GET("/diagrams/:conversationID/history", ctrl.History)
	r.GET("/diagrams/:conversationID/traces", ctrl.Traces)
	r.GET("/conversations", ctrl.Conversations)
	r.GET("/ws/diagrams/:conversationID", ctrl.GenerateWS)
}

// session returns the one Session for a conversation id, creating it on
// first use. Sessions are retained for the life of the process: with a
// store configured each holds only the id and its turn mutex, and evicting
// one while a turn is in flight would break per-conversation serialization.
func (ctrl *Controller) session(conversationID string) *draftsmith.Session {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if s, ok := ctrl.sessions[conversationID]; ok {
		return s
	}
	s := draftsmith.NewSession(ctrl.agent, conversationID)
	ctrl.sessions[conversationID] = s
	return s
}

// Health reports service liveness and the message store's reachability.
func (ctrl *Controller) Health(c *gin.Context) {
	if ctrl.store != nil {
		if err := ctrl.store.Ping(); err != nil {
			ctrl.logger.Printf("Store ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Generate runs one turn within a persisted conversation.
func (ctrl *Controller) Generate(c *gin.Context) {
	conversationID := c.Param("conversationID")

	var req DiagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := ctrl.session(conversationID)
	result, err := session.Run(c.Request.Context(), req.Message, nil)
	if err != nil {
		ctrl.logger.Printf("Turn failed for conversation %s: %v", conversationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateStateless runs one turn against caller-supplied history without
// touching the store. The caller keeps the returned history_json for the
// next request.
func (ctrl *Controller) GenerateStateless(c *gin.Context) {
	var req DiagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := ctrl.agent.Generate(c.Request.Context(), req.Message, req.HistoryJSON)
	c.JSON(http.StatusOK, result)
}

// History returns the persisted turns of a conversation.
func (ctrl *Controller) History(c *gin.Context) {
	if ctrl.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no message store configured"})
		return
	}

	conversationID := c.Param("conversationID")
	turns, err := ctrl.store.FetchTurns(conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"turns":           stores.SanitizeTurns(turns),
	})
}

// Traces returns the generation traces recorded for a conversation.
func (ctrl *Controller) Traces(c *gin.Context) {
	if ctrl.traces == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no trace store configured"})
		return
	}

	conversationID := c.Param("conversationID")
	traces, err := ctrl.traces.ListTracesByConversation(conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"traces":          traces,
	})
}

// Conversations lists known conversation ids, or per-user summaries when a
// user_id query parameter is present.
func (ctrl *Controller) Conversations(c *gin.Context) {
	if ctrl.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no message store configured"})
		return
	}

	if userID := c.Query("user_id"); userID != "" {
		infos, err := ctrl.store.ListConversationsForUser(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversations": infos})
		return
	}

	ids, err := ctrl.store.ListConversations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": ids})
}
