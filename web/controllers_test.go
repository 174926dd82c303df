package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/draftsmith/draftsmith"
	"github.com/draftsmith/draftsmith/stores"
)

// pingStore is a MessageStore whose only interesting behavior is Ping.
type pingStore struct {
	pingErr error
}

func (s *pingStore) SaveTurns(conversationID string, turns []stores.Turn) error { return nil }
func (s *pingStore) FetchTurns(conversationID string) ([]stores.Turn, error)    { return nil, nil }
func (s *pingStore) CreateConversation(convoID, userID string) error            { return nil }
func (s *pingStore) ListConversations() ([]string, error)                       { return nil, nil }
func (s *pingStore) ListConversationsForUser(userID string) ([]stores.ConversationInfo, error) {
	return nil, nil
}
func (s *pingStore) Connect() error { return nil }
func (s *pingStore) Close() error   { return nil }
func (s *pingStore) Ping() error    { return s.pingErr }

func healthRouter(store stores.MessageStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	config := draftsmith.NewConfig().WithStore(store)
	ctrl := NewController(config)
	r := gin.New()
	ctrl.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHealth_StoreReachable(t *testing.T) {
	r := healthRouter(&pingStore{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d (body: %s)", w.Code, w.Body.String())
	}
}

func TestHealth_StoreDown(t *testing.T) {
	r := healthRouter(&pingStore{pingErr: fmt.Errorf("database is closed")})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when the store is unreachable, got %d", w.Code)
	}
}

func TestHealth_NoStoreConfigured(t *testing.T) {
	r := healthRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 without a store, got %d", w.Code)
	}
}
