package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/sqlast"
	"github.com/zoobzio/sqlast/internal/querydoc"
)

func newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [file...]",
		Short: "Translate query documents",
		Long: `Translate YAML query documents into SQL for the selected dialect.
Reads standard input when no file is given or the file is "-".`,
		RunE: runTranslate,
	}
	cmd.Flags().Bool("args", false, "Print bind values after each statement")
	return cmd
}

type translation struct {
	source string
	result *sqlast.Result
}

func runTranslate(cmd *cobra.Command, args []string) error {
	d, logger, err := openDialect(cmd)
	if err != nil {
		return err
	}
	showArgs, _ := cmd.Flags().GetBool("args")
	if len(args) == 0 {
		args = []string{"-"}
	}

	// Documents are translated concurrently and printed in argument order.
	out := make([]translation, len(args))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, source := range args {
		g.Go(func() error {
			data, err := readSource(cmd.InOrStdin(), source)
			if err != nil {
				return err
			}
			result, err := translate(d, data)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			logger.Debug("translated", "source", source, "dialect", d.Name(), "slots", len(result.Bindings))
			out[i] = translation{source: source, result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, t := range out {
		if len(out) > 1 {
			fmt.Fprintf(w, "-- %s\n", t.source)
		}
		fmt.Fprintf(w, "%s;\n", t.result.SQL)
		if showArgs && len(t.result.Bindings) > 0 {
			fmt.Fprintf(w, "-- args: %s\n", formatBindings(t.result))
		}
	}
	return nil
}

func readSource(stdin io.Reader, source string) ([]byte, error) {
	if source == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read query: %w", err)
	}
	return data, nil
}

func translate(d sqlast.Dialect, data []byte) (*sqlast.Result, error) {
	doc, err := querydoc.Parse(data)
	if err != nil {
		return nil, err
	}
	stmt, opts, err := querydoc.Build(doc)
	if err != nil {
		return nil, err
	}
	return d.Render(stmt, opts)
}

func formatBindings(r *sqlast.Result) string {
	parts := make([]string, len(r.Bindings))
	for i, b := range r.Bindings {
		if !b.Bound {
			parts[i] = ":" + b.Parameter.Name
			continue
		}
		parts[i] = fmt.Sprintf("%s=%v", b.Parameter.Name, b.Value)
	}
	return strings.Join(parts, ", ")
}
