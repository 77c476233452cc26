package domain

// EventType is the inbound event vocabulary of the survey engine
type EventType string

const (
	EventStartSurvey EventType = "start_survey"
	EventAnswerText  EventType = "answer_text"
	EventCancel      EventType = "cancel"
	EventStats       EventType = "stats"
	EventOptout      EventType = "optout"
	EventOptin       EventType = "optin"
	EventHelp        EventType = "help"
	EventUnknown     EventType = "unknown"
)

// Event is an inbound event parsed from a transport message or command
type Event struct {
	Type   EventType
	ChatID string
	Kind   SurveyKind // start_survey only
	Text   string     // answer_text only
}
