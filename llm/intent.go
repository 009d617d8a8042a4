package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/definitelynotchirag/Fitlog/utils"
	"go.uber.org/zap"
)

type Intent string

const (
	IntentWorkoutCommand  Intent = "workout_command"
	IntentFitnessQuestion Intent = "fitness_question"
	IntentHistoryQuestion Intent = "history_question"
)

// ClassifyIntent classifies raw input into one of the three intents with a
// single constrained generation call. It is a function of the text only;
// conversation history is deliberately not consulted (multi-turn references
// like "yes, add them" are patched by the extractor's keyword fallback).
//
// When the model returns something that is not one of the three labels we
// default to workout_command rather than failing the request; extraction
// then fails gracefully downstream if the input was not actually a command.
func ClassifyIntent(ctx context.Context, gen Generator, text string) (Intent, error) {
	out, err := gen.Generate(ctx, fmt.Sprintf(intentTemplate, text), text)
	if err != nil {
		return "", &ClassificationError{Err: err}
	}

	label := Intent(strings.ToLower(strings.TrimSpace(out)))
	switch label {
	case IntentWorkoutCommand, IntentFitnessQuestion, IntentHistoryQuestion:
		return label, nil
	}

	utils.Logger.Warn("intent_label_unrecognized",
		zap.String("label", string(label)),
	)
	return IntentWorkoutCommand, nil
}
