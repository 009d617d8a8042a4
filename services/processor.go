package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/definitelynotchirag/Fitlog/llm"
	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event types emitted over one chat exchange. The sequence is strictly
// ordered: start first, then chunks and/or errors, at most one complete.
// The transport layer appends the terminal [DONE] sentinel.
const (
	EventStart    = "start"
	EventChunk    = "chunk"
	EventComplete = "complete"
	EventError    = "error"
)

type Event struct {
	Type         string        `json:"type"`
	Message      string        `json:"message,omitempty"`
	Content      string        `json:"content,omitempty"`
	FullResponse string        `json:"fullResponse,omitempty"`
	IsComplete   bool          `json:"isComplete,omitempty"`
	CaloriesInfo *CaloriesInfo `json:"caloriesInfo,omitempty"`
}

// EmitFunc receives events as they are produced. Returning an error stops
// production: the consumer went away, so remaining generation and writes
// are abandoned.
type EmitFunc func(Event) error

// ProcessChatStream runs one chat request end to end: context assembly,
// intent classification, then either streamed generation (questions) or
// extraction + dispatch (commands). Every failure is delivered as an
// in-band error event; a non-nil return means only that emit itself
// failed (client gone).
func ProcessChatStream(ctx context.Context, gdb *gorm.DB, gen llm.Generator, userID uint, text string, emit EmitFunc) error {
	if err := emit(Event{Type: EventStart, Message: "Analyzing your request..."}); err != nil {
		return err
	}

	transcript, personal := assembleContext(gdb, userID, text)

	intent, err := llm.ClassifyIntent(ctx, gen, text)
	if err != nil {
		utils.LLMFailures.WithLabelValues("classify").Inc()
		utils.Logger.Error("intent_classification_failed", zap.Uint("user_id", userID), zap.Error(err))
		return emitError(emit, userMessage(err))
	}
	utils.ChatRequests.WithLabelValues(string(intent)).Inc()

	switch intent {
	case llm.IntentFitnessQuestion:
		return streamAnswer(ctx, gdb, gen, userID, text, llm.FitnessPrompt(personal, transcript), emit)
	case llm.IntentHistoryQuestion:
		return streamAnswer(ctx, gdb, gen, userID, text, llm.HistoryPrompt(personal, transcript), emit)
	default:
		return runWorkoutCommand(ctx, gdb, gen, userID, text, transcript, personal, emit)
	}
}

// assembleContext gathers the conversation window and the personalization
// block. Both degrade to empty/sentinel content on failure; context is
// enrichment, never a reason to fail the request.
func assembleContext(gdb *gorm.DB, userID uint, text string) (transcript, personal string) {
	transcript, err := RecentTranscript(gdb, userID, ChatHistoryWindow)
	if err != nil {
		utils.Logger.Warn("chat_transcript_fetch_failed", zap.Uint("user_id", userID), zap.Error(err))
		transcript = ""
	}
	if transcript != "" {
		transcript += "\n"
	}
	transcript += text

	summary := SummarizeWorkoutHistory(gdb, userID, HistoryWindowDays)
	personal = BuildPersonalContext(gdb, userID, summary)
	return transcript, personal
}

// streamAnswer streams a context-grounded markdown answer chunk by chunk,
// then records the exchange in the persisted history.
func streamAnswer(ctx context.Context, gdb *gorm.DB, gen llm.Generator, userID uint, text, system string, emit EmitFunc) error {
	var accumulated string
	var emitFailed error
	full, err := gen.GenerateStream(ctx, system, text, func(delta string) error {
		accumulated += delta
		if e := emit(Event{
			Type:         EventChunk,
			Content:      delta,
			FullResponse: accumulated,
		}); e != nil {
			emitFailed = e
			return e
		}
		return nil
	})
	if err != nil {
		// An emit failure means the client went away: stop quietly.
		// Anything else is an LLM failure reported in-band.
		if emitFailed != nil {
			return emitFailed
		}
		utils.LLMFailures.WithLabelValues("stream").Inc()
		utils.Logger.Error("llm_stream_failed", zap.Uint("user_id", userID), zap.Error(err))
		return emitError(emit, "Sorry, I encountered an error processing your request.")
	}

	if err := emit(Event{Type: EventComplete, Message: full, IsComplete: true}); err != nil {
		return err
	}

	recordExchange(gdb, userID, text, full)
	return nil
}

func runWorkoutCommand(ctx context.Context, gdb *gorm.DB, gen llm.Generator, userID uint, text, transcript, personal string, emit EmitFunc) error {
	payload, err := llm.ExtractAction(ctx, gen, text, transcript, personal)
	if err != nil {
		utils.LLMFailures.WithLabelValues("extract").Inc()
		utils.Logger.Error("action_extraction_failed", zap.Uint("user_id", userID), zap.Error(err))
		return emitError(emit, userMessage(err))
	}

	if err := emit(Event{Type: EventChunk, Content: progressMessage(payload)}); err != nil {
		return err
	}

	result, err := Dispatch(gdb, userID, payload)
	if err != nil {
		utils.Logger.Warn("action_dispatch_failed",
			zap.Uint("user_id", userID),
			zap.String("action", payload.Action),
			zap.Error(err),
		)
		return emitError(emit, userMessage(err))
	}

	if err := emit(Event{
		Type:         EventComplete,
		Message:      result.Message,
		CaloriesInfo: result.CaloriesInfo,
		IsComplete:   true,
	}); err != nil {
		return err
	}

	recordExchange(gdb, userID, text, result.Message)
	return nil
}

// ProcessChat is the non-streaming variant kept for compatibility: same
// pipeline, one final message instead of incremental events.
func ProcessChat(ctx context.Context, gdb *gorm.DB, gen llm.Generator, userID uint, text string) (DispatchResult, error) {
	transcript, personal := assembleContext(gdb, userID, text)

	intent, err := llm.ClassifyIntent(ctx, gen, text)
	if err != nil {
		utils.LLMFailures.WithLabelValues("classify").Inc()
		return DispatchResult{}, err
	}
	utils.ChatRequests.WithLabelValues(string(intent)).Inc()

	switch intent {
	case llm.IntentFitnessQuestion, llm.IntentHistoryQuestion:
		system := llm.FitnessPrompt(personal, transcript)
		if intent == llm.IntentHistoryQuestion {
			system = llm.HistoryPrompt(personal, transcript)
		}
		answer, err := gen.Generate(ctx, system, text)
		if err != nil {
			utils.LLMFailures.WithLabelValues("generate").Inc()
			return DispatchResult{}, err
		}
		recordExchange(gdb, userID, text, answer)
		return DispatchResult{Message: answer}, nil
	default:
		payload, err := llm.ExtractAction(ctx, gen, text, transcript, personal)
		if err != nil {
			utils.LLMFailures.WithLabelValues("extract").Inc()
			return DispatchResult{}, err
		}
		result, err := Dispatch(gdb, userID, payload)
		if err != nil {
			return DispatchResult{}, err
		}
		recordExchange(gdb, userID, text, result.Message)
		return result, nil
	}
}

func emitError(emit EmitFunc, message string) error {
	return emit(Event{Type: EventError, Message: message})
}

// userMessage maps pipeline errors to the message shown to the user.
func userMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}

	var rErr *ResolutionError
	if errors.As(err, &rErr) {
		return fmt.Sprintf("I couldn't find a %s called %q. Please check the name and try again.", rErr.Kind, rErr.Name)
	}

	var xErr *llm.ExtractionError
	if errors.As(err, &xErr) {
		return "Could not parse workout data. Please try again."
	}

	var cErr *llm.ClassificationError
	if errors.As(err, &cErr) {
		return "Sorry, I encountered an error processing your request."
	}

	return "Sorry, I encountered an error while processing your workout data."
}

// progressMessage is the short in-flight chunk sent before dispatch work.
func progressMessage(p llm.ActionPayload) string {
	switch CanonicalAction(p.Action) {
	case ActionLogWorkout:
		return "Logging your workout..."
	case ActionCreateRoutine:
		return "Creating new routine..."
	case ActionAddWorkout:
		return "Adding workout to routine..."
	case ActionAddMultipleWorkouts:
		return fmt.Sprintf("Adding %d workouts to routine...", len(p.WorkoutName))
	default:
		return "Processing your request..."
	}
}

func recordExchange(gdb *gorm.DB, userID uint, userText, assistantText string) {
	if err := AppendChatMessage(gdb, userID, models.AuthorUser, userText); err != nil {
		utils.Logger.Warn("chat_history_append_failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	if assistantText == "" {
		return
	}
	if err := AppendChatMessage(gdb, userID, models.AuthorAssistant, assistantText); err != nil {
		utils.Logger.Warn("chat_history_append_failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}
