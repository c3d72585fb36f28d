package prompt

import (
	"context"
	"strings"

	"github.com/goliatone/go-screener/pkg/model"
)

// SkipLabel is offered on optional single choice prompts.
const SkipLabel = "(skip)"

// Ask prompts for one field and returns the answers to capture, keyed by
// input name. current seeds defaults.
func Ask(ctx context.Context, d Driver, field model.FieldDescription, current model.Values) (model.Values, error) {
	message := field.Label
	if field.Required {
		message += " *"
	}

	switch {
	case len(field.Parts) > 0:
		out := model.Values{}
		for _, part := range field.Parts {
			value, err := d.Input(ctx, InputConfig{
				Message: field.Label + " (" + strings.ToLower(part.Label) + ")",
				Default: current.String(part.Name),
			})
			if err != nil {
				return nil, err
			}
			out[part.Name] = strings.TrimSpace(value)
		}
		return out, nil

	case field.Kind.SingleChoice() && len(field.Options) > 0:
		labels := optionLabels(field.Options)
		if !field.Required {
			labels = append(labels, SkipLabel)
		}
		idx, err := d.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: optionIndex(field.Options, current.String(field.Name)),
			Help:         field.Placeholder,
		})
		if err != nil {
			return nil, err
		}
		value := ""
		if idx >= 0 && idx < len(field.Options) {
			value = field.Options[idx].Value
		}
		return model.Values{field.Name: value}, nil

	case field.Kind.MultiChoice() && len(field.Options) > 0:
		var defaults []int
		for _, v := range current.List(field.Name) {
			if i := optionIndex(field.Options, v); i >= 0 {
				defaults = append(defaults, i)
			}
		}
		picked, err := d.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  optionLabels(field.Options),
			Defaults: defaults,
			Help:     field.Placeholder,
		})
		if err != nil {
			return nil, err
		}
		values := make([]string, 0, len(picked))
		for _, i := range picked {
			if i >= 0 && i < len(field.Options) {
				values = append(values, field.Options[i].Value)
			}
		}
		return model.Values{field.Name: values}, nil

	case field.Kind.MultiChoice():
		raw, err := d.Input(ctx, InputConfig{
			Message: message + " (comma separated)",
			Default: current.String(field.Name),
			Help:    field.Placeholder,
		})
		if err != nil {
			return nil, err
		}
		var values []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				values = append(values, item)
			}
		}
		return model.Values{field.Name: values}, nil

	case field.Kind == model.WidgetTextarea:
		value, err := d.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: current.String(field.Name),
			Help:    field.Placeholder,
		})
		if err != nil {
			return nil, err
		}
		return model.Values{field.Name: value}, nil

	default:
		help := field.Placeholder
		if field.Kind == model.WidgetFile {
			help = "path to the file to attach"
		}
		value, err := d.Input(ctx, InputConfig{
			Message: message,
			Default: current.String(field.Name),
			Help:    help,
		})
		if err != nil {
			return nil, err
		}
		return model.Values{field.Name: strings.TrimSpace(value)}, nil
	}
}

func optionLabels(options []model.Option) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		out = append(out, label)
	}
	return out
}

func optionIndex(options []model.Option, value string) int {
	if value == "" {
		return -1
	}
	for i, opt := range options {
		if opt.Value == value || opt.Raw == value {
			return i
		}
	}
	return -1
}
