package stores

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TraceRecord is the write-once audit record of one generation turn, keyed by
// trace id. It captures the routing decision, the final generation result and
// the tool outcomes for offline analysis and training-data collection.
type TraceRecord struct {
	ID             uint      `gorm:"primarykey" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	TraceID        string    `gorm:"uniqueIndex;not null" json:"trace_id"`
	ConversationID string    `gorm:"index" json:"conversation_id,omitempty"`
	RequestText    string    `gorm:"type:text" json:"request_text"`

	RoutingJSON    string `gorm:"type:text" json:"-"`
	GenerationJSON string `gorm:"type:text" json:"-"`
	ToolsJSON      string `gorm:"type:text" json:"-"`

	// Not stored, computed from the JSON columns.
	Routing    map[string]any `gorm:"-" json:"routing,omitempty"`
	Generation map[string]any `gorm:"-" json:"generation,omitempty"`
	Tools      []any          `gorm:"-" json:"tools,omitempty"`

	TurnCountAtCapture int `json:"turn_count_at_capture"`
}

// BeforeSave marshals the computed fields into their JSON columns.
func (t *TraceRecord) BeforeSave(tx *gorm.DB) error {
	if t.Routing != nil {
		data, err := json.Marshal(t.Routing)
		if err != nil {
			return err
		}
		t.RoutingJSON = string(data)
	}
	if t.Generation != nil {
		data, err := json.Marshal(t.Generation)
		if err != nil {
			return err
		}
		t.GenerationJSON = string(data)
	}
	if t.Tools != nil {
		data, err := json.Marshal(t.Tools)
		if err != nil {
			return err
		}
		t.ToolsJSON = string(data)
	}
	return nil
}

// AfterFind unmarshals the JSON columns back into the computed fields.
func (t *TraceRecord) AfterFind(tx *gorm.DB) error {
	if t.RoutingJSON != "" {
		if err := json.Unmarshal([]byte(t.RoutingJSON), &t.Routing); err != nil {
			return err
		}
	}
	if t.GenerationJSON != "" {
		if err := json.Unmarshal([]byte(t.GenerationJSON), &t.Generation); err != nil {
			return err
		}
	}
	if t.ToolsJSON != "" {
		if err := json.Unmarshal([]byte(t.ToolsJSON), &t.Tools); err != nil {
			return err
		}
	}
	return nil
}

// GORMTraceStore implements TraceStore for SQLite/PostgreSQL via GORM
type GORMTraceStore struct {
	db *gorm.DB
}

// NewGORMTraceStore creates a trace store from an existing GORM database connection
func NewGORMTraceStore(db *gorm.DB) (*GORMTraceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if err := db.AutoMigrate(&TraceRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate trace_records table: %w", err)
	}

	return &GORMTraceStore{db: db}, nil
}

// SaveTrace persists a single trace record. The unique index on trace_id
// enforces the write-once contract.
func (s *GORMTraceStore) SaveTrace(trace *TraceRecord) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if trace.TraceID == "" {
		return fmt.Errorf("trace id is empty")
	}
	return s.db.Create(trace).Error
}

// GetTrace retrieves one trace record by trace id.
func (s *GORMTraceStore) GetTrace(traceID string) (*TraceRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var trace TraceRecord
	if err := s.db.Where("trace_id = ?", traceID).First(&trace).Error; err != nil {
		return nil, err
	}
	return &trace, nil
}

// ListTracesByConversation retrieves all traces for a conversation, oldest first.
func (s *GORMTraceStore) ListTracesByConversation(conversationID string) ([]*TraceRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var traces []*TraceRecord
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&traces).Error

	return traces, err
}

// DeleteTracesBefore removes trace records created before the cutoff.
func (s *GORMTraceStore) DeleteTracesBefore(cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	result := s.db.Where("created_at < ?", cutoff).Delete(&TraceRecord{})
	return result.RowsAffected, result.Error
}
