// Package classify maps answers onto a question's safe, flag and disqualify
// rule sets. Every function here is pure.
package classify

import (
	"strings"

	"github.com/goliatone/go-screener/pkg/model"
)

// Classify returns the classification of one answer value. Precedence is
// disqualify, then flag, then safe; values listed nowhere are safe.
func Classify(q model.Question, value string) model.Classification {
	if strings.TrimSpace(value) == "" {
		return model.ClassSafe
	}
	switch {
	case contains(q.Rules.Disqualify, value):
		return model.ClassDisqualify
	case contains(q.Rules.Flag, value):
		return model.ClassFlag
	default:
		return model.ClassSafe
	}
}

// Worst classifies every value and returns the strongest outcome.
func Worst(q model.Question, values []string) model.Classification {
	worst := model.ClassSafe
	for _, value := range values {
		if class := Classify(q, value); class.Severity() > worst.Severity() {
			worst = class
		}
	}
	return worst
}

// Outcome records how one answered question classified.
type Outcome struct {
	QuestionID string               `json:"questionId"`
	FieldName  string               `json:"fieldName"`
	Values     []string             `json:"values"`
	Class      model.Classification `json:"classification"`
	Message    string               `json:"message,omitempty"`
}

// Answer classifies all values given for q. Disqualified outcomes carry the
// question's disqualify message.
func Answer(q model.Question, values []string) Outcome {
	out := Outcome{
		QuestionID: q.ID,
		FieldName:  q.FieldName,
		Values:     append([]string(nil), values...),
		Class:      Worst(q, values),
	}
	if out.Class == model.ClassDisqualify {
		out.Message = q.DisqualifyMessage
	}
	return out
}

// contains matches the trimmed value exactly or case-insensitively, so
// "Yes" and " YES " match a "yes" rule but "18+" never matches "<18".
func contains(set []string, value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range set {
		candidate = strings.TrimSpace(candidate)
		if candidate == trimmed || strings.EqualFold(candidate, trimmed) {
			return true
		}
	}
	return false
}
