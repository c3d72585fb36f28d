package descriptor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Node is one value of a descriptor tree. Map entries preserve declaration
// order. Scalars hold a string, bool, or float64.
type Node struct {
	kind    Kind
	scalar  any
	items   []Node
	entries []Entry
}

// Entry is a key/value pair inside a map Node.
type Entry struct {
	Key   string
	Value Node
}

// Null returns the null Node.
func Null() Node {
	return Node{}
}

// Scalar wraps a scalar value. Integers are widened to float64 so JSON and
// YAML sources compare the same way.
func Scalar(value any) Node {
	switch v := value.(type) {
	case nil:
		return Null()
	case string, bool, float64:
		return Node{kind: KindScalar, scalar: v}
	case float32:
		return Node{kind: KindScalar, scalar: float64(v)}
	case int:
		return Node{kind: KindScalar, scalar: float64(v)}
	case int64:
		return Node{kind: KindScalar, scalar: float64(v)}
	case int32:
		return Node{kind: KindScalar, scalar: float64(v)}
	case uint64:
		return Node{kind: KindScalar, scalar: float64(v)}
	case uint:
		return Node{kind: KindScalar, scalar: float64(v)}
	case time.Time:
		return Node{kind: KindScalar, scalar: v.Format(time.RFC3339)}
	default:
		return Node{kind: KindScalar, scalar: fmt.Sprint(v)}
	}
}

// List builds a list Node.
func List(items ...Node) Node {
	return Node{kind: KindList, items: append([]Node(nil), items...)}
}

// Map builds a map Node keeping entry order. A repeated key replaces the
// earlier value in its original position.
func Map(entries ...Entry) Node {
	out := Node{kind: KindMap}
	for _, entry := range entries {
		out.entries = appendEntry(out.entries, entry)
	}
	return out
}

// E is shorthand for building an Entry.
func E(key string, value Node) Entry {
	return Entry{Key: key, Value: value}
}

// Strings builds a list Node of string scalars.
func Strings(values ...string) Node {
	items := make([]Node, 0, len(values))
	for _, value := range values {
		items = append(items, Scalar(value))
	}
	return List(items...)
}

func appendEntry(entries []Entry, entry Entry) []Entry {
	for idx := range entries {
		if entries[idx].Key == entry.Key {
			entries[idx].Value = entry.Value
			return entries
		}
	}
	return append(entries, entry)
}

// FromValue converts an already decoded Go value into a Node. Go maps carry no
// key order, so map keys are sorted to keep the result deterministic; callers
// that need declaration order should parse raw bytes or build nodes with Map.
func FromValue(value any) (Node, error) {
	switch v := value.(type) {
	case Node:
		return v, nil
	case nil:
		return Null(), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, key := range keys {
			child, err := FromValue(v[key])
			if err != nil {
				return Node{}, fmt.Errorf("descriptor: key %q: %w", key, err)
			}
			entries = append(entries, Entry{Key: key, Value: child})
		}
		return Map(entries...), nil
	case []any:
		items := make([]Node, 0, len(v))
		for idx, raw := range v {
			child, err := FromValue(raw)
			if err != nil {
				return Node{}, fmt.Errorf("descriptor: index %d: %w", idx, err)
			}
			items = append(items, child)
		}
		return List(items...), nil
	case []map[string]any:
		items := make([]Node, 0, len(v))
		for idx, raw := range v {
			child, err := FromValue(raw)
			if err != nil {
				return Node{}, fmt.Errorf("descriptor: index %d: %w", idx, err)
			}
			items = append(items, child)
		}
		return List(items...), nil
	case []string:
		return Strings(v...), nil
	case string, bool, float64, float32, int, int32, int64, uint, uint64:
		return Scalar(v), nil
	default:
		return Node{}, fmt.Errorf("descriptor: unsupported value type %T", value)
	}
}

// Kind reports the node kind.
func (n Node) Kind() Kind { return n.kind }

// IsNull reports whether the node is null or absent.
func (n Node) IsNull() bool { return n.kind == KindNull }

// IsMap reports whether the node is a mapping.
func (n Node) IsMap() bool { return n.kind == KindMap }

// IsList reports whether the node is a sequence.
func (n Node) IsList() bool { return n.kind == KindList }

// IsScalar reports whether the node is a scalar.
func (n Node) IsScalar() bool { return n.kind == KindScalar }

// Len returns the number of entries or items.
func (n Node) Len() int {
	switch n.kind {
	case KindMap:
		return len(n.entries)
	case KindList:
		return len(n.items)
	default:
		return 0
	}
}

// Entries returns a copy of the map entries in declaration order.
func (n Node) Entries() []Entry {
	if n.kind != KindMap {
		return nil
	}
	return append([]Entry(nil), n.entries...)
}

// Items returns a copy of the list items.
func (n Node) Items() []Node {
	if n.kind != KindList {
		return nil
	}
	return append([]Node(nil), n.items...)
}

// Get returns the value stored under key.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindMap {
		return Node{}, false
	}
	for _, entry := range n.entries {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return Node{}, false
}

// Lookup tries each key in order and returns the first non-null value along
// with the key that matched.
func (n Node) Lookup(keys ...string) (Node, string, bool) {
	for _, key := range keys {
		if value, ok := n.Get(key); ok && !value.IsNull() {
			return value, key, true
		}
	}
	return Node{}, "", false
}

// Text renders a scalar as a string. Non-scalars report false.
func (n Node) Text() (string, bool) {
	if n.kind != KindScalar {
		return "", false
	}
	switch v := n.scalar.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// TextList renders a list of scalars as strings, skipping nested values. A
// lone scalar yields a single element list.
func (n Node) TextList() []string {
	switch n.kind {
	case KindScalar:
		if text, ok := n.Text(); ok {
			return []string{text}
		}
	case KindList:
		out := make([]string, 0, len(n.items))
		for _, item := range n.items {
			if text, ok := item.Text(); ok {
				out = append(out, text)
			}
		}
		return out
	}
	return nil
}

// Float reads numeric scalars, including numeric strings.
func (n Node) Float() (float64, bool) {
	if n.kind != KindScalar {
		return 0, false
	}
	switch v := n.scalar.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Truthy interprets booleans, "true"/"yes"/"1" strings, and non-zero numbers
// as true.
func (n Node) Truthy() bool {
	if n.kind != KindScalar {
		return false
	}
	switch v := n.scalar.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}

// Interface converts the node back into plain Go values (map[string]any,
// []any, scalars).
func (n Node) Interface() any {
	switch n.kind {
	case KindScalar:
		return n.scalar
	case KindList:
		out := make([]any, 0, len(n.items))
		for _, item := range n.items {
			out = append(out, item.Interface())
		}
		return out
	case KindMap:
		out := make(map[string]any, len(n.entries))
		for _, entry := range n.entries {
			out[entry.Key] = entry.Value.Interface()
		}
		return out
	default:
		return nil
	}
}
