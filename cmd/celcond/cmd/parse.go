// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/stacklok/cel-conditions/bridge"
	"github.com/stacklok/cel-conditions/condition"
)

func newParseCmd() *cobra.Command {
	parseCmd := &cobra.Command{
		Use:   "parse EXPRESSION...",
		Short: "Parse CEL conditions and print their expression trees",
		Long: `parse sends the expressions to the CEL service as one batch and prints each
tree as protojson, one per line. With --normalize it prints the condition's
canonical text instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
	parseCmd.Flags().String("backend-url", "", "remote CEL service (defaults to in-process parsing)")
	parseCmd.Flags().Bool("normalize", false, "print the canonical condition text")
	return parseCmd
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend-url") {
		cfg.Backend.URL, _ = cmd.Flags().GetString("backend-url")
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	svc, closeSvc, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSvc()

	batch := bridge.New(svc, bridge.WithLogger(logger)).BatchConvertCELStringToParsedExpr(cmd.Context(), args)
	if batch.Degraded {
		return errors.New("CEL service could not parse the batch; see the log for details")
	}

	normalize, _ := cmd.Flags().GetBool("normalize")
	out := cmd.OutOrStdout()
	for i, e := range batch.Values {
		if !normalize {
			data, err := protojson.Marshal(e)
			if err != nil {
				return fmt.Errorf("expression %d: %w", i, err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}
		expr, err := condition.Resolve(e)
		if err != nil {
			return fmt.Errorf("expression %d: %w", i, err)
		}
		text, err := condition.Stringify(expr)
		if err != nil {
			return fmt.Errorf("expression %d: %w", i, err)
		}
		fmt.Fprintln(out, text)
	}
	return nil
}
