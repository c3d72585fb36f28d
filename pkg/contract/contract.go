// Package contract describes the submission record as an OpenAPI schema so
// webhook consumers can validate what they receive.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-screener/pkg/aggregate"
	"github.com/goliatone/go-screener/pkg/model"
)

// SchemaName is the component name of the record schema.
const SchemaName = "SubmissionRecord"

// DefaultPath is the webhook path advertised by Document.
const DefaultPath = "/submissions"

// ErrViolation marks records that do not satisfy the schema.
var ErrViolation = errors.New("contract: record violates schema")

const heightPattern = `^\d+'\d+"$`

// RecordSchema builds the schema of the record produced for tree. Answer keys
// are optional since hidden questions never reach the record.
func RecordSchema(tree model.Tree) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = tree.Title
	open := true
	schema.AdditionalProperties = openapi3.AdditionalProperties{Has: &open}

	for _, field := range tree.Fields() {
		if field.Name == "" || schema.Properties[field.Name] != nil {
			continue
		}
		schema.WithPropertyRef(field.Name, openapi3.NewSchemaRef("", fieldSchema(field)))
	}

	schema.WithProperty(aggregate.KeyFormTitle, openapi3.NewStringSchema())
	schema.WithProperty(aggregate.KeyCategory, openapi3.NewStringSchema())
	schema.WithProperty(aggregate.KeyConsultType, openapi3.NewStringSchema().WithEnum(aggregate.ConsultAsync, aggregate.ConsultSync))
	schema.WithProperty(aggregate.KeySubmissionID, openapi3.NewStringSchema().WithMinLength(1))
	schema.WithProperty(aggregate.KeySessionID, openapi3.NewStringSchema())
	schema.WithProperty(aggregate.KeySubmittedAt, openapi3.NewDateTimeSchema())
	schema.WithProperty(aggregate.KeyBMI, openapi3.NewStringSchema().WithPattern(`^\d+(\.\d)?$`))
	schema.Required = []string{
		aggregate.KeyFormTitle,
		aggregate.KeyCategory,
		aggregate.KeyConsultType,
		aggregate.KeySubmissionID,
		aggregate.KeySubmittedAt,
	}
	return schema
}

func fieldSchema(field model.FieldDescription) *openapi3.Schema {
	var s *openapi3.Schema
	switch {
	case field.Kind.MultiChoice():
		items := openapi3.NewStringSchema()
		if values := optionValues(field, false); len(values) > 0 {
			items.WithEnum(values...)
		}
		s = openapi3.NewArraySchema().WithItems(items)
	case field.Kind.SingleChoice() && len(field.Options) > 0:
		s = openapi3.NewStringSchema().WithEnum(optionValues(field, !field.Required)...)
	case field.Kind == model.WidgetHeight:
		s = openapi3.NewStringSchema().WithPattern(heightPattern)
	default:
		s = openapi3.NewStringSchema()
	}
	s.Description = field.Label
	return s
}

func optionValues(field model.FieldDescription, allowBlank bool) []any {
	out := make([]any, 0, len(field.Options)+1)
	if allowBlank {
		out = append(out, "")
	}
	for _, opt := range field.Options {
		out = append(out, opt.Value)
	}
	return out
}

// Option customises Document.
type Option func(*docOptions)

type docOptions struct {
	path    string
	version string
}

// WithPath overrides DefaultPath.
func WithPath(path string) Option {
	return func(o *docOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(o *docOptions) {
		if version != "" {
			o.version = version
		}
	}
}

// Document wraps RecordSchema in an OpenAPI document describing the webhook
// a transport posts to.
func Document(tree model.Tree, options ...Option) *openapi3.T {
	o := docOptions{path: DefaultPath, version: "1.0.0"}
	for _, opt := range options {
		if opt != nil {
			opt(&o)
		}
	}

	schema := RecordSchema(tree)
	ref := openapi3.NewSchemaRef("#/components/schemas/"+SchemaName, schema)

	op := openapi3.NewOperation()
	op.OperationID = "submitRecord"
	op.Summary = fmt.Sprintf("Deliver a %s submission", tree.Title)
	op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref)}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("record accepted")}),
	)

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   tree.Title,
			Version: o.version,
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(o.path, &openapi3.PathItem{Post: op})),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{SchemaName: openapi3.NewSchemaRef("", schema)},
		},
	}
}

// Validate checks record against schema, reporting every violation.
func Validate(ctx context.Context, schema *openapi3.Schema, record aggregate.Record) error {
	if schema == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("contract: encode record: %w", err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("contract: decode record: %w", err)
	}
	if err := schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %v", ErrViolation, err)
	}
	return nil
}
