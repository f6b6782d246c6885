// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacklok/cel-conditions/cel"
	"github.com/stacklok/cel-conditions/condition"
	"github.com/stacklok/cel-conditions/template"
)

func newRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render [templates.yaml]",
		Short: "Print the CEL text of condition templates",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().Bool("builtin", false, "render the built-in templates")
	renderCmd.Flags().Bool("check", false, "type-check each condition against the factor catalog")
	return renderCmd
}

func runRender(cmd *cobra.Command, args []string) error {
	builtin, _ := cmd.Flags().GetBool("builtin")
	check, _ := cmd.Flags().GetBool("check")

	var templates []template.Template
	switch {
	case builtin && len(args) > 0:
		return errors.New("--builtin cannot be combined with a templates file")
	case builtin:
		templates = template.BuiltinTemplates()
	case len(args) == 1:
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open templates: %w", err)
		}
		defer f.Close()
		if templates, err = template.Load(f); err != nil {
			return err
		}
	default:
		return errors.New("a templates file or --builtin is required")
	}

	catalog := condition.DefaultCatalog()
	engine := cel.NewEngine(catalog.EnvOptions()...)
	out := cmd.OutOrStdout()
	for _, t := range templates {
		expr, err := t.Apply(catalog)
		if err != nil {
			return err
		}
		text, err := condition.Stringify(expr)
		if err != nil {
			return fmt.Errorf("template %q: %w", t.ID, err)
		}
		if check {
			if err := engine.Check(text); err != nil {
				return fmt.Errorf("template %q: %w", t.ID, err)
			}
		}
		fmt.Fprintf(out, "%s\t%s\n", t.ID, text)
	}
	return nil
}
