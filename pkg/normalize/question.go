package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-screener/pkg/descriptor"
	"github.com/goliatone/go-screener/pkg/model"
)

const requiredMarker = "*"

type orderedQuestion struct {
	question model.Question
	order    int
}

func (n *Normalizer) section(raw rawSection, st *state) (model.Section, error) {
	section := model.Section{ID: raw.id, Title: raw.title}

	ordered := make([]orderedQuestion, 0, len(raw.entries))
	sortByOrder := false
	for idx, entry := range raw.entries {
		question, order, hasOrder, err := n.question(entry, st)
		if err != nil {
			return model.Section{}, withLocation(err, raw.title, idx)
		}
		if hasOrder {
			sortByOrder = true
		}
		ordered = append(ordered, orderedQuestion{question: question, order: order})
	}
	if sortByOrder {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].order < ordered[j].order
		})
	}

	seen := make(map[string]int, len(ordered))
	for idx, item := range ordered {
		name := item.question.FieldName
		if first, ok := seen[name]; ok {
			return model.Section{}, &SchemaError{
				Section: raw.title,
				Index:   idx,
				Field:   name,
				Detail:  fmt.Sprintf("already used by entry %d", first),
				Err:     ErrFieldCollision,
			}
		}
		seen[name] = idx

		if owner, ok := st.ids[item.question.ID]; ok {
			return model.Section{}, &SchemaError{
				Section: raw.title,
				Index:   idx,
				Field:   item.question.ID,
				Detail:  "already used by " + owner,
				Err:     ErrDuplicateID,
			}
		}
		st.ids[item.question.ID] = name

		section.Questions = append(section.Questions, item.question)
	}
	return section, nil
}

func withLocation(err error, section string, idx int) error {
	if schemaErr, ok := err.(*SchemaError); ok && schemaErr.Section == "" {
		schemaErr.Section = section
		schemaErr.Index = idx
		return schemaErr
	}
	return err
}

// question converts one raw entry. It reports the explicit order when the
// entry carries one.
func (n *Normalizer) question(entry descriptor.Node, st *state) (model.Question, int, bool, error) {
	if entry.IsScalar() {
		text, _ := entry.Text()
		q, err := n.fromText(text, st)
		return q, missingOrder, false, err
	}
	if !entry.IsMap() {
		return model.Question{}, 0, false, &SchemaError{Err: ErrMissingText, Detail: "entry is a " + entry.Kind().String()}
	}

	textNode, textKey, ok := entry.Lookup(textKeys...)
	rawText := ""
	if ok {
		rawText, _ = textNode.Text()
	}
	text, starred := displayText(rawText)
	if text == "" {
		return model.Question{}, 0, false, &SchemaError{Err: ErrMissingText}
	}

	q := model.Question{
		Text:     text,
		Required: starred || truthy(entry, requiredKeys...),
	}

	q.FieldName = explicitFieldName(entry, textKey)
	if q.FieldName == "" {
		q.FieldName = Sanitize(text)
	}

	q.ID = lookupText(entry, idKeys...)
	if q.ID == "" {
		q.ID = st.nextID(text)
	}
	if q.FieldName == "" {
		q.FieldName = Sanitize(q.ID)
	}

	q.Rules = model.RuleSets{
		Safe:       unionLists(entry, safeKeys...),
		Flag:       unionLists(entry, flagKeys...),
		Disqualify: unionLists(entry, disqualifyKeys...),
	}

	q.Options, q.OptionLabels = readOptions(entry)
	if len(q.Options) == 0 {
		q.Options = optionsFromRules(q.Rules)
	}

	q.TypeHint = strings.ToLower(lookupText(entry, typeHintKeys...))
	q.Multiple = truthy(entry, multipleKeys...)
	q.ShowCondition = lookupText(entry, showConditionKeys...)
	q.DisqualifyMessage = plainText(lookupText(entry, disqualifyMessageKeys...))
	q.Placeholder = plainText(lookupText(entry, placeholderKeys...))
	q.Accept = lookupText(entry, acceptKeys...)
	q.Min = lookupFloat(entry, minKeys...)
	q.Max = lookupFloat(entry, maxKeys...)
	if rows := lookupFloat(entry, rowsKeys...); rows != nil && *rows > 0 {
		q.Rows = int(*rows)
	}

	order, hasOrder := missingOrder, false
	if value := lookupFloat(entry, orderKeys...); value != nil {
		order, hasOrder = int(*value), true
		q.Order = order
	}
	return q, order, hasOrder, nil
}

func (n *Normalizer) fromText(raw string, st *state) (model.Question, error) {
	text, starred := displayText(raw)
	if text == "" {
		return model.Question{}, &SchemaError{Err: ErrMissingText}
	}
	q := model.Question{
		ID:        st.nextID(text),
		Text:      text,
		FieldName: Sanitize(text),
		Required:  starred,
	}
	if q.FieldName == "" {
		q.FieldName = Sanitize(q.ID)
	}
	return q, nil
}

func (st *state) nextID(text string) string {
	st.counter++
	slug := Sanitize(text)
	if slug == "" {
		slug = "question"
	}
	return fmt.Sprintf("q_%s_%d", slug, st.counter)
}

// displayText strips markup and the required marker.
func displayText(raw string) (string, bool) {
	text := plainText(raw)
	starred := strings.Contains(text, requiredMarker)
	if starred {
		text = strings.TrimSpace(strings.ReplaceAll(text, requiredMarker, ""))
	}
	return text, starred
}

func explicitFieldName(entry descriptor.Node, textKey string) string {
	for _, key := range fieldNameKeys {
		if key == textKey {
			continue
		}
		value, ok := entry.Get(key)
		if !ok {
			continue
		}
		if text, ok := value.Text(); ok && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return ""
}

func truthy(entry descriptor.Node, keys ...string) bool {
	value, _, ok := entry.Lookup(keys...)
	return ok && value.Truthy()
}

func lookupFloat(entry descriptor.Node, keys ...string) *float64 {
	value, _, ok := entry.Lookup(keys...)
	if !ok {
		return nil
	}
	number, ok := value.Float()
	if !ok {
		return nil
	}
	return &number
}

// unionLists merges every present key, keeping first-seen order.
func unionLists(entry descriptor.Node, keys ...string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, key := range keys {
		value, ok := entry.Get(key)
		if !ok {
			continue
		}
		for _, item := range value.TextList() {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

func readOptions(entry descriptor.Node) ([]string, map[string]string) {
	value, _, ok := entry.Lookup(optionKeys...)
	if !ok {
		return nil, nil
	}

	var items []descriptor.Node
	switch {
	case value.IsList():
		items = value.Items()
	case value.IsScalar():
		text, _ := value.Text()
		for _, part := range strings.Split(text, ",") {
			items = append(items, descriptor.Scalar(part))
		}
	}

	var (
		options []string
		labels  map[string]string
		seen    = make(map[string]struct{})
	)
	for _, item := range items {
		var raw, label string
		switch {
		case item.IsMap():
			raw = lookupText(item, optionValueKeys...)
			label = plainText(lookupText(item, optionLabelKeys...))
		default:
			text, _ := item.Text()
			raw = strings.TrimSpace(text)
		}
		if raw == "" {
			continue
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		options = append(options, raw)
		if label != "" && label != raw {
			if labels == nil {
				labels = make(map[string]string)
			}
			labels[raw] = label
		}
	}
	return options, labels
}

// optionsFromRules derives choices from the rule lists when a descriptor only
// lists eligibility values. A wildcard ("any_*") means the answer is free
// form, so no choices are derived.
func optionsFromRules(rules model.RuleSets) []string {
	lists := [][]string{rules.Safe, rules.Flag, rules.Disqualify}
	for _, list := range lists {
		for _, value := range list {
			if IsWildcard(value) {
				return nil
			}
		}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, value := range list {
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			out = append(out, value)
		}
	}
	return out
}

// IsWildcard reports whether a rule value stands for "any answer", such as
// any_valid or any_text.
func IsWildcard(value string) bool {
	return strings.HasPrefix(Sanitize(value), "any_")
}
