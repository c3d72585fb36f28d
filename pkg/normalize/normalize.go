package normalize

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-screener/pkg/descriptor"
	"github.com/goliatone/go-screener/pkg/model"
)

// Defaults used when a descriptor carries no form metadata.
const (
	DefaultTitle        = "Form"
	DefaultCategory     = "general"
	DefaultConsultType  = "async"
	DefaultSectionTitle = "Questions"
)

// Normalizer converts descriptor trees into canonical forms. The zero value is
// not usable; call New.
type Normalizer struct {
	title       string
	category    string
	consultType string
}

// Option customises a Normalizer.
type Option func(*Normalizer)

// WithDefaultTitle overrides the title used when the descriptor has none.
func WithDefaultTitle(title string) Option {
	return func(n *Normalizer) {
		if strings.TrimSpace(title) != "" {
			n.title = title
		}
	}
}

// WithDefaultCategory overrides the fallback category.
func WithDefaultCategory(category string) Option {
	return func(n *Normalizer) {
		if strings.TrimSpace(category) != "" {
			n.category = category
		}
	}
}

// WithDefaultConsultType overrides the fallback consult type.
func WithDefaultConsultType(consultType string) Option {
	return func(n *Normalizer) {
		if strings.TrimSpace(consultType) != "" {
			n.consultType = consultType
		}
	}
}

// New constructs a Normalizer.
func New(options ...Option) *Normalizer {
	n := &Normalizer{
		title:       DefaultTitle,
		category:    DefaultCategory,
		consultType: DefaultConsultType,
	}
	for _, opt := range options {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Normalize runs the default Normalizer.
func Normalize(root descriptor.Node) (model.FormModel, error) {
	return New().Normalize(root)
}

// NormalizeValue normalises an already decoded value. Go maps carry no key
// order, so sections of a map[string]any come out sorted by key.
func NormalizeValue(value any) (model.FormModel, error) {
	root, err := descriptor.FromValue(value)
	if err != nil {
		return model.FormModel{}, &SchemaError{Err: ErrUnsupportedShape, Detail: err.Error()}
	}
	return New().Normalize(root)
}

// NormalizeDocument parses and normalises a loaded document.
func (n *Normalizer) NormalizeDocument(doc descriptor.Document) (model.FormModel, error) {
	root, err := doc.Tree()
	if err != nil {
		return model.FormModel{}, fmt.Errorf("normalize: %s: %w", doc.Location(), err)
	}
	return n.Normalize(root)
}

type rawSection struct {
	id      string
	title   string
	entries []descriptor.Node
}

// state is scoped to one Normalize call so ids are reproducible.
type state struct {
	counter int
	ids     map[string]string
}

// Normalize converts root into a FormModel.
func (n *Normalizer) Normalize(root descriptor.Node) (model.FormModel, error) {
	form := model.FormModel{
		Title:       n.title,
		Category:    n.category,
		ConsultType: n.consultType,
	}

	var raws []rawSection
	switch {
	case root.IsList():
		if groups, ok := sectionObjects(root); ok {
			raws = groups
		} else {
			raws = []rawSection{{id: Sanitize(DefaultSectionTitle), title: DefaultSectionTitle, entries: root.Items()}}
		}
	case root.IsMap():
		n.readMetadata(root, &form)
		raws = candidateSections(root)
		if len(raws) == 0 {
			raws = fallbackSection(root)
		}
	default:
		return model.FormModel{}, &SchemaError{Err: ErrUnsupportedShape, Detail: root.Kind().String()}
	}

	if len(raws) == 0 {
		return model.FormModel{}, &SchemaError{Err: ErrNoSections}
	}

	st := &state{ids: make(map[string]string)}
	for _, raw := range raws {
		section, err := n.section(raw, st)
		if err != nil {
			return model.FormModel{}, err
		}
		form.Sections = append(form.Sections, section)
	}
	return form, nil
}

func (n *Normalizer) readMetadata(root descriptor.Node, form *model.FormModel) {
	var entries []descriptor.Entry
	if meta, ok := root.Get("metadata"); ok && meta.IsMap() {
		entries = append(entries, meta.Entries()...)
	}
	for _, entry := range root.Entries() {
		if entry.Value.IsScalar() {
			entries = append(entries, entry)
		}
	}
	meta := descriptor.Map(entries...)

	form.Metadata = make(map[string]any, meta.Len()+1)
	for _, entry := range meta.Entries() {
		form.Metadata[entry.Key] = entry.Value.Interface()
	}
	if cfg, ok := root.Get("config"); ok && !cfg.IsNull() {
		form.Metadata["config"] = cfg.Interface()
	}
	if len(form.Metadata) == 0 {
		form.Metadata = nil
	}

	if title := lookupText(meta, titleKeys...); title != "" {
		form.Title = plainText(title)
	}
	if subtitle := lookupText(meta, subtitleKeys...); subtitle != "" {
		form.Subtitle = plainText(subtitle)
	}
	if category := lookupText(meta, categoryKeys...); category != "" {
		form.Category = strings.TrimSpace(category)
	}
	if consult := lookupText(meta, consultTypeKeys...); consult != "" {
		form.ConsultType = strings.ToLower(strings.TrimSpace(consult))
	}
}

func candidateSections(root descriptor.Node) []rawSection {
	var out []rawSection
	for _, entry := range root.Entries() {
		if entry.Key == sectionsKey {
			out = append(out, nestedSections(entry.Value)...)
			continue
		}
		if _, reserved := reservedKeys[entry.Key]; reserved {
			continue
		}
		if !entry.Value.IsList() || entry.Value.Len() == 0 {
			continue
		}
		out = append(out, rawSection{id: Sanitize(entry.Key), title: Humanize(entry.Key), entries: entry.Value.Items()})
	}
	return out
}

// nestedSections reads the value of a "sections" key: either a map of name to
// question list (or section object), or a list of section objects.
func nestedSections(value descriptor.Node) []rawSection {
	switch {
	case value.IsMap():
		var out []rawSection
		for _, entry := range value.Entries() {
			switch {
			case entry.Value.IsList() && entry.Value.Len() > 0:
				out = append(out, rawSection{id: Sanitize(entry.Key), title: Humanize(entry.Key), entries: entry.Value.Items()})
			case entry.Value.IsMap():
				if raw, ok := sectionObject(entry.Value, entry.Key); ok {
					out = append(out, raw)
				}
			}
		}
		return out
	case value.IsList():
		if groups, ok := sectionObjects(value); ok {
			return groups
		}
		if value.Len() > 0 {
			return []rawSection{{id: sectionsKey, title: Humanize(sectionsKey), entries: value.Items()}}
		}
	}
	return nil
}

// sectionObjects detects lists whose items all carry their own question list.
func sectionObjects(list descriptor.Node) ([]rawSection, bool) {
	items := list.Items()
	if len(items) == 0 {
		return nil, false
	}
	out := make([]rawSection, 0, len(items))
	for idx, item := range items {
		raw, ok := sectionObject(item, fmt.Sprintf("section_%d", idx+1))
		if !ok {
			return nil, false
		}
		out = append(out, raw)
	}
	return out, true
}

func sectionObject(node descriptor.Node, fallbackKey string) (rawSection, bool) {
	if !node.IsMap() {
		return rawSection{}, false
	}
	questions, _, ok := node.Lookup(sectionQuestionKeys...)
	if !ok || !questions.IsList() {
		return rawSection{}, false
	}
	title := plainText(lookupText(node, sectionTitleKeys...))
	if title == "" {
		title = Humanize(fallbackKey)
	}
	id := lookupText(node, "id")
	if id == "" {
		id = Sanitize(title)
	}
	return rawSection{id: id, title: title, entries: questions.Items()}, true
}

func fallbackSection(root descriptor.Node) []rawSection {
	for _, entry := range root.Entries() {
		if entry.Value.IsList() {
			title := Humanize(entry.Key)
			if entry.Key == "questions" {
				title = DefaultSectionTitle
			}
			return []rawSection{{id: Sanitize(entry.Key), title: title, entries: entry.Value.Items()}}
		}
	}
	return nil
}

func lookupText(node descriptor.Node, keys ...string) string {
	value, _, ok := node.Lookup(keys...)
	if !ok {
		return ""
	}
	text, _ := value.Text()
	return strings.TrimSpace(text)
}
