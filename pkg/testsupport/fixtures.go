// Package testsupport holds descriptor fixtures and helpers shared by tests.
package testsupport

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-screener/pkg/descriptor"
	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/normalize"
	"github.com/goliatone/go-screener/pkg/render"
)

// Fixture names.
const (
	GLP1Screening = "glp1_screening.json"
	QuickIntake   = "intake.yaml"
)

//go:embed fixtures/*
var fixtures embed.FS

// FixtureBytes returns the raw fixture payload.
func FixtureBytes(name string) ([]byte, error) {
	data, err := fixtures.ReadFile("fixtures/" + name)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture %q: %w", name, err)
	}
	return data, nil
}

// LoadForm parses and normalizes a fixture, returning an error for callers
// managing setup outside of *testing.T.
func LoadForm(name string) (model.FormModel, error) {
	data, err := FixtureBytes(name)
	if err != nil {
		return model.FormModel{}, err
	}
	doc, err := descriptor.NewDocument(descriptor.SourceFromFile(name), data)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	form, err := normalize.New().NormalizeDocument(doc)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("testsupport: normalize %q: %w", name, err)
	}
	return form, nil
}

// Form is LoadForm failing the test on error.
func Form(t testing.TB, name string) model.FormModel {
	t.Helper()
	form, err := LoadForm(name)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// Tree renders a fixture with the default renderer.
func Tree(t testing.TB, name string) model.Tree {
	t.Helper()
	return render.New().Form(Form(t, name))
}

// WriteFixture copies a fixture into dir and returns its path, for tests
// exercising file loading.
func WriteFixture(t testing.TB, dir, name string) string {
	t.Helper()
	data, err := FixtureBytes(name)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureOutput runs fn against a buffer and returns what it wrote.
func CaptureOutput(t testing.TB, fn func(io.Writer) error) string {
	t.Helper()
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		t.Fatalf("capture output: %v", err)
	}
	return buf.String()
}
