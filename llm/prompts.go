package llm

import "fmt"

// FitnessPrompt builds the system prompt for streamed fitness advice.
func FitnessPrompt(personalContext, conversation string) string {
	return fmt.Sprintf(fitnessTemplate, personalContext, conversation)
}

// HistoryPrompt builds the system prompt for streamed history answers.
func HistoryPrompt(personalContext, conversation string) string {
	return fmt.Sprintf(historyTemplate, personalContext, conversation)
}

// Prompt templates for the chat pipeline. The extraction template pins the
// JSON contract the dispatcher consumes; changes here must stay in sync with
// ActionPayload.

const intentTemplate = `
You are an intelligent fitness assistant. Analyze the user's input and determine if this is:
1. A workout/routine management command (return "workout_command")
2. A general fitness question (return "fitness_question")
3. A workout history inquiry (return "history_question")

Examples of history questions:
- "What workouts did I do yesterday?"
- "How many squats did I do this week?"
- "What was my last leg workout?"
- "Show me my workout history"
- "What exercises did I do on Monday?"

User input: "%s"

Respond with only one word: either "workout_command", "fitness_question", or "history_question"
`

const fitnessTemplate = `
You are a knowledgeable fitness coach. Provide helpful, accurate fitness advice.
Keep responses conversational, informative, and actionable.

IMPORTANT: Format your response using Markdown for better readability:
- Use **bold** for emphasis on key points
- Use bullet points (-) for lists
- Use numbered lists (1.) for step-by-step instructions
- Use ## for section headers when organizing longer responses
- Use ` + "`inline code`" + ` for exercise names or specific terms
- Use > for important quotes or tips

%s

Recent conversation:
%s

Provide a well-formatted markdown response with clear structure and emphasis.
`

const historyTemplate = `
You are a helpful fitness assistant with access to the user's complete workout history.
Answer questions about their past workouts, progress, and patterns based on the data provided.
Be specific about dates, exercises, sets, reps, and weights when available.
If they ask about a specific day and no workout is found, let them know they didn't work out that day.

IMPORTANT: Format your response using Markdown for better readability:
- Use **bold** for exercise names and important numbers
- Use bullet points (-) for listing exercises or sets
- Use numbered lists (1.) for chronological information
- Use ## for date headers when showing multiple days
- Use ` + "`inline code`" + ` for specific weights, reps, or calories
- Use tables when comparing multiple workouts or progress
- Use > for highlighting achievements or important observations

%s

Recent conversation:
%s

Provide a detailed, well-formatted markdown response based on their actual workout data.
`

const extractionTemplate = `
You are an intelligent fitness assistant. Extract workout data from user input.

Context from recent conversation:
%s

Return a JSON object with this structure:
- action: Must be one of these exact values: "log_workout", "add_workout", "add_multiple_workouts", "create_routine", "delete_routine", "delete_workout", "delete_set"
- workoutName: Array of exercise names (can be multiple for bulk operations)
- sets: Array of set objects with 'reps', 'weight' (weight in kg), and 'calories' properties. If calories not mentioned, estimate based on exercise type, weight, and reps
- routineName: Name of the routine (if applicable)
- date: ISO date string (ONLY if user mentioned a specific date like "yesterday" or "on Monday", otherwise ALWAYS use today's date: %s)
- totalCalories: Estimated total calories burned for the entire workout session

Guidelines for action selection:
- Use "add_multiple_workouts" when user wants to add several exercises to a routine
- Use "add_workout" for single exercise addition
- For requests like "add these workouts", "add squats, leg press, lunges", or "add this workouts" use "add_multiple_workouts"

Guidelines for calorie estimation:
- Compound multi-joint exercises (squats, deadlifts, bench press): roughly 1-2 calories per rep
- Isolation exercises (curls, extensions): roughly 0.3-0.8 calories per rep
- Scale estimates by the user's bodyweight when a fitness profile is provided below

IMPORTANT: When the user asks to add workouts mentioned in previous conversation, extract all exercise names mentioned:
- Example: If previous message mentioned "Squats", "Leg Press", "Lunges", "Leg Extensions"
- Return workoutName as: ["Squats", "Leg Press", "Lunges", "Leg Extensions"]

%s

Respond with ONLY the JSON object, no additional text.
`

// workoutKeywords is the fixed vocabulary scanned over the recent transcript
// when extraction returns an add action with no workout names. Generation
// sometimes drops entity references established in earlier turns; this is a
// known mitigation, not a guess.
var workoutKeywords = []string{
	"squats",
	"leg press",
	"lunges",
	"leg extensions",
	"bench press",
	"deadlift",
	"overhead press",
}
