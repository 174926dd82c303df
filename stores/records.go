package stores

import (
	"encoding/json"
	"fmt"
)

// turnToRecord flattens a Turn into its database row form.
func turnToRecord(conversationID string, sequence int, t Turn) (TurnRecord, error) {
	rec := TurnRecord{
		ConversationID: conversationID,
		Sequence:       sequence,
		Role:           t.Role,
		Text:           t.Text,
		Failed:         t.Failed,
	}

	if len(t.ToolCalls) > 0 {
		data, err := json.Marshal(t.ToolCalls)
		if err != nil {
			return TurnRecord{}, fmt.Errorf("failed to marshal tool calls: %w", err)
		}
		rec.ToolCallsJSON = string(data)
	}
	if len(t.ToolResults) > 0 {
		data, err := json.Marshal(t.ToolResults)
		if err != nil {
			return TurnRecord{}, fmt.Errorf("failed to marshal tool results: %w", err)
		}
		rec.ToolResultsJSON = string(data)
	}

	return rec, nil
}

// recordToTurn rebuilds a Turn from its database row form.
func recordToTurn(rec TurnRecord) (Turn, error) {
	t := Turn{
		Role:   rec.Role,
		Text:   rec.Text,
		Failed: rec.Failed,
	}

	if rec.ToolCallsJSON != "" {
		if err := json.Unmarshal([]byte(rec.ToolCallsJSON), &t.ToolCalls); err != nil {
			return Turn{}, fmt.Errorf("failed to unmarshal tool calls for turn %d: %w", rec.ID, err)
		}
	}
	if rec.ToolResultsJSON != "" {
		if err := json.Unmarshal([]byte(rec.ToolResultsJSON), &t.ToolResults); err != nil {
			return Turn{}, fmt.Errorf("failed to unmarshal tool results for turn %d: %w", rec.ID, err)
		}
	}

	return t, nil
}
