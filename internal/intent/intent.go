// Package intent classifies free-text user input into a closed set of
// intents driving service dispatch.
package intent

// Intent is the closed category assigned to an utterance. The dispatch site
// switches exhaustively over these values, so adding one is a compile-time
// visible change.
type Intent string

const (
	IntentTodo           Intent = "todo"
	IntentLink           Intent = "link"
	IntentKnowledge      Intent = "knowledge"
	IntentLife           Intent = "life"
	IntentMusic          Intent = "music"
	IntentInsight        Intent = "insight"
	IntentContent        Intent = "content"
	IntentFeedback       Intent = "feedback"
	IntentRecommendation Intent = "recommendation"
	IntentChatHistory    Intent = "chat_history"
	IntentOther          Intent = "other"
)

// SubIntent refines the todo intent.
type SubIntent string

const (
	SubIntentNone   SubIntent = ""
	SubIntentCreate SubIntent = "create"
	SubIntentUpdate SubIntent = "update"
	SubIntentQuery  SubIntent = "query"
)

// Classification is the transient result of classifying one utterance. It is
// consumed once per request and never persisted.
type Classification struct {
	Intent     Intent    `json:"intent"`
	SubIntent  SubIntent `json:"subIntent,omitempty"`
	Confidence float64   `json:"confidence"`
}

// knownIntents gates model output; anything else falls back to heuristics.
var knownIntents = map[Intent]bool{
	IntentTodo: true, IntentLink: true, IntentKnowledge: true, IntentLife: true,
	IntentMusic: true, IntentInsight: true, IntentContent: true, IntentFeedback: true,
	IntentRecommendation: true, IntentChatHistory: true, IntentOther: true,
}

// knownSubIntents gates model sub-intent output.
var knownSubIntents = map[SubIntent]bool{
	SubIntentNone: true, SubIntentCreate: true, SubIntentUpdate: true, SubIntentQuery: true,
}
