package domain

// OutboundKind is the type of a message produced for the transport
type OutboundKind string

const (
	OutboundPrompt             OutboundKind = "prompt"
	OutboundValidationRejected OutboundKind = "validation_rejected"
	OutboundConfirmation       OutboundKind = "confirmation"
	OutboundAlert              OutboundKind = "alert"
	OutboundNotice             OutboundKind = "notice"
)

// Outbound is a message for the transport to render and deliver
type Outbound struct {
	Kind        OutboundKind
	ChatID      string
	Text        string
	QuestionKey string    // prompt and validation_rejected only
	Choices     []string  // closed choice set, rendered as buttons where supported
	Signal      AlertKind // alert only
}

// HasChoices reports whether the transport should render a choice set
func (o Outbound) HasChoices() bool {
	return len(o.Choices) > 0
}
