package domain

// AlertKind classifies a safety alert
type AlertKind string

const (
	AlertRiskKeyword AlertKind = "risk_keyword"
	AlertHighTension AlertKind = "high_tension"
)

// AlertSignal is produced at survey completion and consumed by the outbound layer
type AlertSignal struct {
	Kind   AlertKind
	Detail string
}

// RiskPolicy configures the alert evaluator
type RiskPolicy struct {
	RiskKey          string   // key of the risk-ideation question
	NoneValue        string   // canonical "none" literal of that question
	TensionKeys      []string // questions checked for high tension
	TensionThreshold int      // inclusive threshold on the 0-5 scale
}
