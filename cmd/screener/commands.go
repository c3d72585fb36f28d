package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-screener"
	"github.com/goliatone/go-screener/internal/prompt"
	"github.com/goliatone/go-screener/internal/runner"
	"github.com/goliatone/go-screener/pkg/aggregate"
	"github.com/goliatone/go-screener/pkg/contract"
	"github.com/goliatone/go-screener/pkg/model"
	"github.com/goliatone/go-screener/pkg/navigator"
	"github.com/goliatone/go-screener/pkg/transport"
	"github.com/goliatone/go-screener/pkg/transport/webhook"
	"github.com/goliatone/go-screener/pkg/validation"
)

// errLintFailed marks a descriptor with error-level issues.
var errLintFailed = errors.New("descriptor has errors")

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <source>",
		Short: "Print the rendered field tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := screener.Load(cmd.Context(), args[0], a.loadOptions()...)
			if err != nil {
				return err
			}
			return writeJSON(a.out, screener.Render(form))
		},
	}
}

func (a *app) lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <source>",
		Short: "Report descriptor problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := screener.LoadDocument(cmd.Context(), args[0], a.loadOptions()...)
			if err != nil {
				return err
			}
			root, err := doc.Tree()
			if err != nil {
				return fmt.Errorf("parse %s: %w", doc.Location(), err)
			}
			result := validation.Lint(root, validation.LintOptions{
				Normalizer: screener.Normalizer(a.loadOptions()...),
			})
			for _, issue := range result.Issues {
				a.log.Debug("lint issue", "section", issue.Section, "field", issue.Field, "severity", issue.Severity)
			}
			if err := writeJSON(a.out, result); err != nil {
				return err
			}
			if !result.Valid {
				return errLintFailed
			}
			return nil
		},
	}
}

func (a *app) contractCmd() *cobra.Command {
	var path, version string
	cmd := &cobra.Command{
		Use:   "contract <source>",
		Short: "Print the OpenAPI contract of the submission record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := screener.Load(cmd.Context(), args[0], a.loadOptions()...)
			if err != nil {
				return err
			}
			doc := contract.Document(screener.Render(form),
				contract.WithPath(path),
				contract.WithVersion(version),
			)
			return writeJSON(a.out, doc)
		},
	}
	cmd.Flags().StringVar(&path, "path", contract.DefaultPath, "submission endpoint path")
	cmd.Flags().StringVar(&version, "version", "", "contract version")
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	var (
		endpoint    string
		prefill     map[string]string
		passthrough map[string]string
	)
	cmd := &cobra.Command{
		Use:   "run <source>",
		Short: "Run an interactive screening session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			form, err := screener.Load(ctx, args[0], a.loadOptions()...)
			if err != nil {
				return err
			}
			if endpoint != "" {
				a.cfg.Transport.Endpoint = endpoint
			}
			tr, err := a.transport(screener.Render(form))
			if err != nil {
				return err
			}

			opts := append(screener.SessionOptions(a.cfg, a.log),
				navigator.WithTransport(tr, aggregate.WithSubmitLogger(a.log)),
				navigator.WithPassthrough(passthrough),
			)
			session, err := screener.NewSession(form, opts...)
			if err != nil {
				return err
			}
			if len(prefill) > 0 {
				values := model.Values{}
				for k, v := range prefill {
					values[k] = v
				}
				if err := session.Prefill(values); err != nil {
					return err
				}
			}

			driver := a.driver
			if driver == nil {
				driver = prompt.NewSurveyDriver(prompt.WithStdio(os.Stdin, os.Stdout, a.errOut))
			}
			r, err := runner.New(driver, runner.WithLogger(a.log))
			if err != nil {
				return err
			}
			result, err := r.Run(ctx, session)
			if err != nil {
				return err
			}
			a.log.Info("session finished", "session", session.ID(), "status", result.Status, "flags", len(result.Flags))
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "webhook receiving the submission record")
	cmd.Flags().StringToStringVar(&prefill, "prefill", nil, "prefill answers as input=value")
	cmd.Flags().StringToStringVar(&passthrough, "context", nil, "passthrough context as name=value")
	return cmd
}

// transport delivers to the configured webhook, or prints records when no
// endpoint is set.
func (a *app) transport(tree model.Tree) (aggregate.Transport, error) {
	tc := a.cfg.Transport
	if tc.Endpoint == "" {
		return transport.NewWriter(a.out), nil
	}
	return webhook.New(tc.Endpoint,
		webhook.WithTimeout(tc.Timeout),
		webhook.WithRetries(tc.Retries, tc.RetryWait),
		webhook.WithSchema(contract.RecordSchema(tree)),
		webhook.WithLogger(a.log),
	)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
