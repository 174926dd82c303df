package generators

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/draftsmith/draftsmith/models"
	"github.com/draftsmith/draftsmith/validators"
)

//go:embed styleguides/*.md
var styleGuideFiles embed.FS

// DefaultMaxRetries bounds the retry loop: up to 1 + DefaultMaxRetries total
// generation attempts.
const DefaultMaxRetries = 2

// GenerationResult is the outcome of a generation run, valid or not. The
// caller decides whether an invalid final result is surfaced as an error.
type GenerationResult struct {
	Title           string                      `json:"title"`
	Code            string                      `json:"code"`
	Reasoning       string                      `json:"reasoning"`
	ValidationNotes string                      `json:"validation_notes,omitempty"`
	Validation      validators.ValidationResult `json:"validation"`
	Attempts        int                         `json:"attempts"`
}

// Generator produces validated diagram code for one dialect.
type Generator interface {
	// Generate runs the generate/validate retry loop and returns the last
	// attempt's result whether or not it is valid. It never fails outright:
	// model errors and timeouts count as invalid attempts.
	Generate(ctx context.Context, intent, conversationContext string) GenerationResult

	// ToolName names the render tool this dialect dispatches to.
	ToolName() string

	// ToolArguments builds the render tool's arguments from a valid result.
	ToolArguments(result GenerationResult) map[string]interface{}
}

// draft is the structured shape every generation prompt asks the model for.
type draft struct {
	Reasoning       string `json:"reasoning"`
	DiagramTitle    string `json:"diagram_title"`
	Code            string `json:"code"`
	ValidationNotes string `json:"validation_notes"`
}

// base carries the pieces shared by both dialect generators.
type base struct {
	model          models.Model
	validator      validators.Validator
	styleGuide     string
	maxRetries     int
	attemptTimeout time.Duration
	logger         *log.Logger
}

func newBase(model models.Model, validator validators.Validator, guideFile, fallbackGuide, logPrefix string, maxRetries int, attemptTimeout time.Duration) base {
	guide := fallbackGuide
	if data, err := styleGuideFiles.ReadFile("styleguides/" + guideFile); err == nil && len(data) > 0 {
		guide = string(data)
	}

	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}

	return base{
		model:          model,
		validator:      validator,
		styleGuide:     guide,
		maxRetries:     maxRetries,
		attemptTimeout: attemptTimeout,
		logger:         log.New(log.Writer(), logPrefix, log.LstdFlags),
	}
}

// generateWithRetry runs the bounded retry loop: attempt, validate, and on
// failure feed the validator's rendered feedback into the next attempt.
// Attempts are strictly sequential since each one depends on the previous
// attempt's errors. The last result is authoritative.
func (b *base) generateWithRetry(ctx context.Context, system, promptTemplate, intent, conversationContext string) GenerationResult {
	result := b.forward(ctx, system, promptTemplate, intent, conversationContext, "")
	attempts := 1

	for !result.Validation.Valid && attempts <= b.maxRetries {
		feedback := result.Validation.GetFeedback()
		b.logger.Printf("Attempt %d invalid, retrying with feedback", attempts)

		result = b.forward(ctx, system, promptTemplate, intent, conversationContext, feedback)
		attempts++
	}

	result.Attempts = attempts
	return result
}

// forward runs a single generation attempt and validates its code. Model
// failures (including attempt timeouts) come back as invalid results carrying
// the error text, so the retry loop can feed it forward as feedback.
func (b *base) forward(ctx context.Context, system, promptTemplate, intent, conversationContext, feedback string) GenerationResult {
	enhancedIntent := intent
	if feedback != "" {
		enhancedIntent = fmt.Sprintf("%s\n\nPREVIOUS ATTEMPT FAILED VALIDATION:\n%s\nPlease fix the issues and regenerate.", intent, feedback)
	}

	attemptCtx := ctx
	if b.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, b.attemptTimeout)
		defer cancel()
	}

	response, err := b.model.Model_Request(attemptCtx, models.Model_Request{
		System:    system,
		Prompt:    fmt.Sprintf(promptTemplate, b.styleGuide, enhancedIntent),
		Context:   conversationContext,
		ForceJSON: true,
	})
	if err != nil {
		b.logger.Printf("Generation call failed: %v", err)
		return GenerationResult{
			Validation: validators.ValidationResult{
				Valid:  false,
				Errors: []string{fmt.Sprintf("Generation call failed: %v", err)},
			},
		}
	}

	var d draft
	if err := json.Unmarshal([]byte(models.ExtractJSONObject(response.Text)), &d); err != nil {
		b.logger.Printf("Could not parse model output: %v", err)
		return GenerationResult{
			Validation: validators.ValidationResult{
				Valid:  false,
				Errors: []string{fmt.Sprintf("Model returned unparseable output: %v", err)},
			},
		}
	}

	return GenerationResult{
		Title:           d.DiagramTitle,
		Code:            d.Code,
		Reasoning:       d.Reasoning,
		ValidationNotes: d.ValidationNotes,
		Validation:      b.validator.Validate(d.Code),
	}
}
