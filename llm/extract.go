package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/definitelynotchirag/Fitlog/utils"
)

// FlexFloat tolerates numbers the model quotes as strings ("50" vs 50).
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt tolerates both quoted and fractional rep counts ("10", 10, 10.0).
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*i = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*i = FlexInt(v)
	return nil
}

type SetInput struct {
	Reps     FlexInt    `json:"reps"`
	Weight   FlexFloat  `json:"weight"`
	Calories *FlexFloat `json:"calories,omitempty"`
}

// ActionPayload is the structured command the extractor produces and the
// dispatcher consumes. Action may arrive as any of the model's aliases;
// services.CanonicalAction folds them before dispatch.
type ActionPayload struct {
	Action        string     `json:"action"`
	WorkoutName   []string   `json:"workoutName"`
	Sets          []SetInput `json:"sets"`
	RoutineName   string     `json:"routineName"`
	Date          string     `json:"date"`
	TotalCalories *FlexFloat `json:"totalCalories,omitempty"`
}

// ExtractAction runs the constrained extraction call and applies the
// deterministic normalization rules. conversation is the recent transcript,
// personalContext the profile + workout-history block.
func ExtractAction(ctx context.Context, gen Generator, text, conversation, personalContext string) (ActionPayload, error) {
	today := utils.TodayUTC().Format("2006-01-02")
	system := fmt.Sprintf(extractionTemplate, conversation, today, personalContext)

	out, err := gen.Generate(ctx, system, text)
	if err != nil {
		return ActionPayload{}, &ExtractionError{Err: err}
	}

	var payload ActionPayload
	cleaned := stripFences(out)
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return ActionPayload{}, &ExtractionError{Raw: out, Err: err}
	}

	NormalizePayload(&payload, conversation, utils.TodayUTC())
	return payload, nil
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// NormalizePayload applies the deterministic post-generation rules:
//
//  1. A missing, unparseable, or placeholder date (any 2023 date, the epoch
//     date) is overwritten with today's UTC calendar date. The model's
//     training examples leak 2023 dates into otherwise-correct payloads.
//  2. Add actions with an empty workoutName get a keyword scan over the
//     recent transcript; every vocabulary match is added title-cased.
//
// Empty sets on a logging action are left as-is; the dispatcher surfaces
// that as a validation error rather than inventing data here.
func NormalizePayload(p *ActionPayload, conversation string, today time.Time) {
	if isPlaceholderDate(p.Date) {
		p.Date = today.Format("2006-01-02")
	}

	if len(p.WorkoutName) == 0 && (p.Action == "add_multiple_workouts" || p.Action == "add_workout") {
		p.WorkoutName = scanWorkoutKeywords(conversation)
	}
}

func isPlaceholderDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	if strings.Contains(s, "2023-") || s == "1970-01-01" {
		return true
	}
	if _, err := utils.ParseISODate(s); err != nil {
		return true
	}
	return false
}

func scanWorkoutKeywords(conversation string) []string {
	var found []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(conversation, "\n") {
		lower := strings.ToLower(line)
		for _, keyword := range workoutKeywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			name := utils.TitleCase(keyword)
			if !seen[name] {
				seen[name] = true
				found = append(found, name)
			}
		}
	}
	return found
}
