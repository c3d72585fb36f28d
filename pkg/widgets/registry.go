package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-screener/pkg/model"
)

// Resolver decides which widget renders a question.
type Resolver interface {
	Resolve(q model.Question) model.WidgetKind
}

// Matcher decides whether a widget should handle the supplied question.
type Matcher func(q model.Question) bool

type rule struct {
	kind     model.WidgetKind
	priority int
	match    Matcher
	order    int
}

// Priorities of the built-in rules. Keyword rules sit above the option rules
// so their relative order matches the historical keyword table.
const (
	PriorityEmail    = 100
	PriorityPhone    = 95
	PriorityDate     = 90
	PriorityHeight   = 85
	PriorityWeight   = 80
	PrioritySex      = 75
	PriorityMedical  = 70
	PriorityTextarea = 65
	PriorityFile     = 60
	PriorityOptions  = 10
)

// Registry selects widgets for questions based on explicit hints or
// registered matchers. Higher priority wins; ties fall back to registration
// order. Questions nothing matches render as plain text.
type Registry struct {
	mu        sync.RWMutex
	rules     []rule
	aliases   map[string]model.WidgetKind
	heuristic bool
}

// Option configures a Registry.
type Option func(*Registry)

// ExplicitOnly skips the keyword table so only type hints and option lists
// decide the widget.
func ExplicitOnly() Option {
	return func(r *Registry) {
		r.heuristic = false
	}
}

// WithAlias maps an additional type hint onto a widget kind.
func WithAlias(hint string, kind model.WidgetKind) Option {
	return func(r *Registry) {
		key := strings.ToLower(strings.TrimSpace(hint))
		if key != "" && kind.Known() {
			r.aliases[key] = kind
		}
	}
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry(options ...Option) *Registry {
	reg := &Registry{
		aliases:   defaultAliases(),
		heuristic: true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(reg)
		}
	}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher for kind. Higher priority values take precedence.
func (r *Registry) Register(kind model.WidgetKind, priority int, matcher Matcher) {
	if r == nil || matcher == nil || !kind.Known() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		kind:     kind,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Match returns the widget chosen by an explicit hint or a matcher.
func (r *Registry) Match(q model.Question) (model.WidgetKind, bool) {
	if r == nil {
		return "", false
	}
	if kind, ok := r.Hint(q.TypeHint); ok {
		return kind, true
	}

	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(q) {
			return entry.kind, true
		}
	}
	return "", false
}

// Resolve implements Resolver, defaulting to a single line text input.
func (r *Registry) Resolve(q model.Question) model.WidgetKind {
	if kind, ok := r.Match(q); ok {
		return kind
	}
	return model.WidgetText
}

// Hint maps a type hint onto a known kind. Unknown hints report false and fall
// through to the matchers during resolution.
func (r *Registry) Hint(hint string) (model.WidgetKind, bool) {
	key := strings.ToLower(strings.TrimSpace(hint))
	if key == "" {
		return "", false
	}
	if kind := model.WidgetKind(key); kind.Known() {
		return kind, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.aliases[key]
	return kind, ok
}

func defaultAliases() map[string]model.WidgetKind {
	return map[string]model.WidgetKind{
		"string":        model.WidgetText,
		"short_text":    model.WidgetText,
		"long_text":     model.WidgetTextarea,
		"paragraph":     model.WidgetTextarea,
		"tel":           model.WidgetPhone,
		"telephone":     model.WidgetPhone,
		"integer":       model.WidgetNumber,
		"numeric":       model.WidgetNumber,
		"dob":           model.WidgetDate,
		"birthdate":     model.WidgetDate,
		"height_feet":   model.WidgetHeight,
		"height_ft":     model.WidgetHeight,
		"weight_pounds": model.WidgetWeight,
		"weight_lbs":    model.WidgetWeight,
		"single_choice": model.WidgetRadio,
		"yes_no":        model.WidgetRadio,
		"boolean":       model.WidgetRadio,
		"multi_select":  model.WidgetCheckbox,
		"multiselect":   model.WidgetCheckbox,
		"checkboxes":    model.WidgetCheckbox,
		"dropdown":      model.WidgetSelect,
		"upload":        model.WidgetFile,
	}
}

func textContains(words ...string) Matcher {
	return func(q model.Question) bool {
		text := strings.ToLower(q.Text)
		for _, word := range words {
			if strings.Contains(text, word) {
				return true
			}
		}
		return false
	}
}

func (r *Registry) registerBuiltins() {
	if r.heuristic {
		r.Register(model.WidgetEmail, PriorityEmail, textContains("email"))
		r.Register(model.WidgetPhone, PriorityPhone, textContains("phone", "number"))
		r.Register(model.WidgetDate, PriorityDate, textContains("date", "birth"))
		r.Register(model.WidgetHeight, PriorityHeight, textContains("height"))
		r.Register(model.WidgetWeight, PriorityWeight, textContains("weight"))
		r.Register(model.WidgetRadio, PrioritySex, textContains("gender", "sex"))
		r.Register(model.WidgetRadio, PriorityMedical, textContains("pregnant", "cancer"))
		r.Register(model.WidgetTextarea, PriorityTextarea, textContains("allergies", "describe"))
		// "id" matches inside ordinary words too; kept for compatibility with
		// existing descriptors.
		r.Register(model.WidgetFile, PriorityFile, textContains("upload", "file", "id"))
	}

	r.Register(model.WidgetCheckbox, PriorityOptions, func(q model.Question) bool {
		return len(q.Options) > 0 && q.Multiple
	})
	r.Register(model.WidgetRadio, PriorityOptions, func(q model.Question) bool {
		return len(q.Options) > 0
	})
}
