package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-screener/pkg/logger"
	"github.com/goliatone/go-screener/pkg/model"
)

const inchesPerFoot = 12

// Fragment holds the answers committed for one step together with the
// fields that were visible when it was committed.
type Fragment struct {
	Step   int
	Fields []model.FieldDescription
	Values model.Values
}

// Input is everything Build needs to produce a record.
type Input struct {
	Title       string
	Category    string
	ConsultType string
	SessionID   string
	Steps       []Fragment
	Context     map[string]string
}

// Collision describes an answer key committed by more than one step.
type Collision struct {
	Key       string
	KeptStep  int
	DroppedAt int
}

// Builder assembles records.
type Builder struct {
	syncStates []string
	stateField string
	now        func() time.Time
	newID      func() (string, error)
	log        logger.Logger
}

// Option customises a Builder.
type Option func(*Builder)

// WithSyncStates sets the states whose consults are forced to sync.
func WithSyncStates(states ...string) Option {
	return func(b *Builder) {
		b.syncStates = b.syncStates[:0]
		for _, s := range states {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				b.syncStates = append(b.syncStates, s)
			}
		}
	}
}

// WithStateField names the answer holding the respondent's state. Without
// it the first answer named "state" or ending in "_state" is used.
func WithStateField(name string) Option {
	return func(b *Builder) {
		b.stateField = strings.TrimSpace(name)
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator replaces the UUID submission id generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(b *Builder) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// WithLogger attaches a logger for collision warnings.
func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBuilder constructs a Builder.
func NewBuilder(options ...Option) *Builder {
	b := &Builder{
		now: time.Now,
		newID: func() (string, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return "", err
			}
			return id.String(), nil
		},
		log: logger.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build merges the fragments in step order. An earlier step keeps a key
// another step also committed; height parts recombine under the field name.
func (b *Builder) Build(in Input) (Record, error) {
	record, collisions := merge(in.Steps)
	for _, c := range collisions {
		b.log.Warn("answer committed by more than one step",
			"field", c.Key, "kept_step", c.KeptStep, "dropped_step", c.DroppedAt)
	}

	if bmi, ok := deriveBMI(in.Steps); ok {
		record[KeyBMI] = bmi
	}

	id, err := b.newID()
	if err != nil {
		return nil, fmt.Errorf("aggregate: submission id: %w", err)
	}

	consult := strings.TrimSpace(in.ConsultType)
	if consult == "" {
		consult = ConsultAsync
	}
	if state := b.state(record); state != "" && b.syncOnly(state) {
		consult = ConsultSync
	}

	meta := map[string]string{
		KeyFormTitle:    in.Title,
		KeyCategory:     in.Category,
		KeyConsultType:  consult,
		KeySubmissionID: id,
		KeySessionID:    in.SessionID,
		KeySubmittedAt:  b.now().UTC().Format(time.RFC3339),
	}
	for key, value := range meta {
		if _, taken := record[key]; taken {
			b.log.Warn("answer shadowed by record metadata", "field", key)
		}
		record[key] = value
	}

	for _, field := range SortedContext(in.Context) {
		if _, taken := record[field.Name]; taken {
			continue
		}
		record[field.Name] = field.Value
	}

	return record, nil
}

// Build is a convenience wrapper over a default Builder.
func Build(in Input, options ...Option) (Record, error) {
	return NewBuilder(options...).Build(in)
}

func merge(steps []Fragment) (Record, []Collision) {
	record := Record{}
	owner := map[string]int{}
	var collisions []Collision

	for _, step := range steps {
		for _, field := range step.Fields {
			key := field.Name
			if key == "" {
				continue
			}
			value, ok := answer(field, step.Values)
			if !ok {
				continue
			}
			if kept, seen := owner[key]; seen {
				collisions = append(collisions, Collision{Key: key, KeptStep: kept, DroppedAt: step.Step})
				continue
			}
			owner[key] = step.Step
			record[key] = value
		}
	}
	return record, collisions
}

func answer(field model.FieldDescription, values model.Values) (any, bool) {
	switch {
	case field.Kind == model.WidgetHeight:
		feet, inches, ok := heightParts(field, values)
		if !ok {
			return nil, false
		}
		return fmt.Sprintf("%d'%d\"", feet, inches), true
	case field.Kind.MultiChoice():
		if _, present := values[field.Name]; !present {
			return nil, false
		}
		list := values.List(field.Name)
		if list == nil {
			list = []string{}
		}
		return list, true
	default:
		if _, present := values[field.Name]; !present {
			return nil, false
		}
		return strings.TrimSpace(values.String(field.Name)), true
	}
}

func heightParts(field model.FieldDescription, values model.Values) (int, int, bool) {
	inputs := field.Inputs()
	if len(inputs) != 2 {
		return 0, 0, false
	}
	feet, err := strconv.Atoi(strings.TrimSpace(values.String(inputs[0])))
	if err != nil {
		return 0, 0, false
	}
	inches := 0
	if raw := strings.TrimSpace(values.String(inputs[1])); raw != "" {
		if inches, err = strconv.Atoi(raw); err != nil {
			return 0, 0, false
		}
	}
	return feet, inches, true
}

func deriveBMI(steps []Fragment) (string, bool) {
	var (
		totalInches  int
		pounds       float64
		haveH, haveW bool
	)
	for _, step := range steps {
		for _, field := range step.Fields {
			switch field.Kind {
			case model.WidgetHeight:
				if haveH {
					continue
				}
				if feet, inches, ok := heightParts(field, step.Values); ok {
					totalInches = feet*inchesPerFoot + inches
					haveH = true
				}
			case model.WidgetWeight:
				if haveW {
					continue
				}
				if w, err := strconv.ParseFloat(strings.TrimSpace(step.Values.String(field.Name)), 64); err == nil {
					pounds = w
					haveW = true
				}
			}
		}
	}
	if !haveH || !haveW || totalInches <= 0 {
		return "", false
	}
	bmi := pounds * 703 / float64(totalInches*totalInches)
	return strconv.FormatFloat(bmi, 'f', 1, 64), true
}

func (b *Builder) state(record Record) string {
	if b.stateField != "" {
		return record.String(b.stateField)
	}
	if v := record.String("state"); v != "" {
		return v
	}
	for key := range record {
		if strings.HasSuffix(key, "_state") {
			if v := record.String(key); v != "" {
				return v
			}
		}
	}
	return ""
}

func (b *Builder) syncOnly(state string) bool {
	state = strings.ToUpper(strings.TrimSpace(state))
	for _, s := range b.syncStates {
		if s == state {
			return true
		}
	}
	return false
}
