package descriptor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format names a payload encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrEmptyDocument is returned when a payload holds no value.
	ErrEmptyDocument = errors.New("descriptor: document is empty")
	// ErrInvalidJSON is returned for malformed JSON payloads.
	ErrInvalidJSON = errors.New("descriptor: invalid json")
)

// Parse decodes raw bytes into an ordered Node tree. FormatAuto tries JSON
// first and falls back to YAML.
func Parse(data []byte, format Format) (Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Node{}, ErrEmptyDocument
	}
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	default:
		if gjson.ValidBytes(data) {
			return ParseJSON(data)
		}
		return ParseYAML(data)
	}
}

// ParseJSON walks a JSON payload with gjson, which iterates object members in
// document order.
func ParseJSON(data []byte) (Node, error) {
	if !gjson.ValidBytes(data) {
		return Node{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(result gjson.Result) Node {
	switch {
	case result.IsObject():
		node := Node{kind: KindMap}
		result.ForEach(func(key, value gjson.Result) bool {
			node.entries = appendEntry(node.entries, Entry{Key: key.String(), Value: fromResult(value)})
			return true
		})
		return node
	case result.IsArray():
		node := Node{kind: KindList}
		result.ForEach(func(_, value gjson.Result) bool {
			node.items = append(node.items, fromResult(value))
			return true
		})
		return node
	}

	switch result.Type {
	case gjson.True:
		return Scalar(true)
	case gjson.False:
		return Scalar(false)
	case gjson.Number:
		return Scalar(result.Num)
	case gjson.String:
		return Scalar(result.Str)
	default:
		return Null()
	}
}

// ParseYAML decodes a YAML payload through yaml.v3 nodes so mapping order is
// preserved.
func ParseYAML(data []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Node{}, fmt.Errorf("descriptor: parse yaml: %w", err)
	}
	if doc.Kind == 0 {
		return Node{}, ErrEmptyDocument
	}
	return fromYAML(&doc)
}

func fromYAML(node *yaml.Node) (Node, error) {
	if node == nil {
		return Null(), nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(node.Content[0])
	case yaml.AliasNode:
		return fromYAML(node.Alias)
	case yaml.MappingNode:
		out := Node{kind: KindMap}
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			value, err := fromYAML(node.Content[idx+1])
			if err != nil {
				return Node{}, err
			}
			out.entries = appendEntry(out.entries, Entry{Key: node.Content[idx].Value, Value: value})
		}
		return out, nil
	case yaml.SequenceNode:
		out := Node{kind: KindList}
		for _, child := range node.Content {
			value, err := fromYAML(child)
			if err != nil {
				return Node{}, err
			}
			out.items = append(out.items, value)
		}
		return out, nil
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return Node{}, fmt.Errorf("descriptor: decode yaml scalar at line %d: %w", node.Line, err)
		}
		return Scalar(value), nil
	default:
		return Null(), nil
	}
}
