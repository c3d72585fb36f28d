package aggregate

import "strings"

// Reserved record keys.
const (
	KeyFormTitle    = "form_title"
	KeyCategory     = "category"
	KeyConsultType  = "consult_type"
	KeySubmissionID = "submission_id"
	KeySessionID    = "session_id"
	KeySubmittedAt  = "submitted_at"
	KeyBMI          = "bmi"
)

// Consult types.
const (
	ConsultAsync = "async"
	ConsultSync  = "sync"
)

var reservedKeys = map[string]struct{}{
	KeyFormTitle:    {},
	KeyCategory:     {},
	KeyConsultType:  {},
	KeySubmissionID: {},
	KeySessionID:    {},
	KeySubmittedAt:  {},
	KeyBMI:          {},
}

// Reserved reports whether key is written by the aggregator itself.
func Reserved(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// Record is the flat submission payload. Values are strings or []string.
type Record map[string]any

// String returns a scalar value, or the empty string.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	default:
		return ""
	}
}

// Target returns the redirect routing for the record.
func (r Record) Target() Target {
	return Target{
		Category:    r.String(KeyCategory),
		ConsultType: r.String(KeyConsultType),
	}
}

// Clone copies the record and its list values.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		if list, ok := v.([]string); ok {
			out[k] = append([]string(nil), list...)
			continue
		}
		out[k] = v
	}
	return out
}

// Target is what the redirect collaborator resolves into a destination.
type Target struct {
	Category    string `json:"category"`
	ConsultType string `json:"consultType"`
}
