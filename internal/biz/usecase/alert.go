package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moodcheck/survey-bot/internal/biz/domain"
)

// AlertEvaluator turns a completed answer set into safety signals
// It knows nothing about transport or storage
type AlertEvaluator struct {
	policy  domain.RiskPolicy
	tension map[string]bool
}

// NewAlertEvaluator creates an evaluator for the given policy
func NewAlertEvaluator(policy domain.RiskPolicy) *AlertEvaluator {
	tension := make(map[string]bool, len(policy.TensionKeys))
	for _, k := range policy.TensionKeys {
		tension[k] = true
	}
	return &AlertEvaluator{policy: policy, tension: tension}
}

// Evaluate returns zero or more signals. It never fails; malformed or
// missing answers are skipped.
func (e *AlertEvaluator) Evaluate(kind domain.SurveyKind, answers domain.Answers) []domain.AlertSignal {
	var signals []domain.AlertSignal

	if e.policy.RiskKey != "" {
		if v, ok := answers.Get(e.policy.RiskKey); ok && domain.Fold(v) != domain.Fold(e.policy.NoneValue) {
			signals = append(signals, domain.AlertSignal{
				Kind:   domain.AlertRiskKeyword,
				Detail: fmt.Sprintf("%s: %s=%s", kind, e.policy.RiskKey, v),
			})
		}
	}

	// At most one high_tension signal; first qualifying answer in question order wins
	for _, ans := range answers {
		if !e.tension[ans.Key] {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(ans.Value))
		if err != nil {
			continue
		}
		if n >= e.policy.TensionThreshold {
			signals = append(signals, domain.AlertSignal{
				Kind:   domain.AlertHighTension,
				Detail: fmt.Sprintf("%s: %s=%d", kind, ans.Key, n),
			})
			break
		}
	}

	return signals
}
