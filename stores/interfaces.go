package stores

import (
	"time"

	"gorm.io/gorm"
)

// TurnRecord is one persisted conversation turn.
type TurnRecord struct {
	gorm.Model
	ConversationID  string `gorm:"index;not null"`
	Sequence        int    `gorm:"not null"`
	Role            string `gorm:"not null"` // "user", "assistant"
	Text            string `gorm:"type:text"`
	ToolCallsJSON   string `gorm:"type:text"`
	ToolResultsJSON string `gorm:"type:text"`
	Failed          bool   `gorm:"default:false"`
}

// Conversation holds metadata for a chat conversation
type Conversation struct {
	gorm.Model
	ConversationID string       `gorm:"uniqueIndex;not null"`
	UserID         string       `gorm:"index"`
	Title          string       `gorm:"type:text"`
	TurnCount      int          `gorm:"default:0"`
	Turns          []TurnRecord `gorm:"foreignKey:ConversationID;references:ConversationID"`
}

// ConversationInfo holds basic conversation metadata for listing
type ConversationInfo struct {
	ConversationID string
	UserID         string
	Title          string
	TurnCount      int
	CreatedAt      string
	UpdatedAt      string
}

// MessageStore abstracts durable conversation persistence.
type MessageStore interface {
	// SaveTurns appends the complete set of turns produced by one request,
	// atomically. Partial appends are never observable.
	SaveTurns(conversationID string, turns []Turn) error
	FetchTurns(conversationID string) ([]Turn, error)

	CreateConversation(convoID, userID string) error
	ListConversations() ([]string, error)
	ListConversationsForUser(userID string) ([]ConversationInfo, error)

	Connect() error
	Close() error

	Ping() error
}

// TraceStore abstracts append-only persistence of generation traces.
type TraceStore interface {
	// SaveTrace persists a trace record. Records are write-once; saving a
	// record whose trace id already exists is an error.
	SaveTrace(trace *TraceRecord) error
	GetTrace(traceID string) (*TraceRecord, error)
	ListTracesByConversation(conversationID string) ([]*TraceRecord, error)
	// DeleteTracesBefore removes records older than the cutoff. Used by the
	// retention sweeper, never by the orchestration path.
	DeleteTracesBefore(cutoff time.Time) (int64, error)
}

// StoreConfig holds configuration for database stores
type StoreConfig struct {
	Type       string            `json:"type"`       // "sqlite", "postgres"
	Connection string            `json:"connection"` // connection string
	Options    map[string]string `json:"options"`    // additional options
}

// NewStoreConfig creates a new store configuration
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
		Options:    make(map[string]string),
	}
}

// WithOption adds an option to the store configuration
func (c *StoreConfig) WithOption(key, value string) *StoreConfig {
	c.Options[key] = value
	return c
}
