// Command apifuzz reads an OpenAPI document, drives every eligible GET and
// POST operation it describes, and reports the status code each generated
// request received.
//
// Grounded on original_source/src/main.rs (read file, parse, run, print),
// rebuilt the idiomatic Go way with cobra for argument parsing — the same
// library cmd/magicschema (MacroPower-x) uses for its CLI front end.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talav/apifuzz"
	"github.com/talav/apifuzz/internal/docparse"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		baseURL   string
		token     string
		format    string
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "apifuzz <description-file>",
		Short: "Fuzz the operations described by an OpenAPI document",
		Long: `apifuzz parses an OpenAPI v3 document, collects its non-deprecated GET
and POST operations, generates every combination of a POST body's
properties, and reports the status code each request received.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			configureLogging(logLevel, logFormat)

			return run(args[0], baseURL, token, format)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&baseURL, "base-url", "", "override the server URL resolved from the document")
	flags.StringVar(&token, "token", "", "bearer token sent on operations that require it")
	flags.StringVar(&format, "format", "table", "output format: table or json")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "text", "log format: text or json")

	return cmd
}

func configureLogging(level, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func run(path, baseURL, token, format string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read description file: %w", err)
	}

	spec, err := docparse.Parse(data)
	if err != nil {
		return fmt.Errorf("parse description file: %w", err)
	}

	var opts []apifuzz.Option
	if baseURL != "" {
		opts = append(opts, apifuzz.WithBaseURL(baseURL))
	}

	if token != "" {
		opts = append(opts, apifuzz.WithBearerToken(token))
	}

	f := apifuzz.New(opts...)

	result, err := f.Run(context.Background(), spec)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	switch format {
	case "json":
		return printJSON(result)
	default:
		return printTable(result)
	}
}

func printJSON(result *apifuzz.Result) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	fmt.Println(string(out))

	return nil
}

func printTable(result *apifuzz.Result) error {
	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"#", "path", "status", "payload size"})

	for i, calls := range result.Operations {
		for _, call := range calls {
			_ = table.Append([]string{
				strconv.Itoa(i),
				call.Path,
				strconv.Itoa(call.StatusCode),
				strconv.Itoa(len(call.Payload)),
			})
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(os.Stderr, "warnings:")

		for _, w := range result.Warnings {
			fmt.Fprintln(os.Stderr, " -", w.String())
		}
	}

	return nil
}
