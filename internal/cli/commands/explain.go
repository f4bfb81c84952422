package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/semgen/internal/cli/config"
	"github.com/leapstack-labs/semgen/internal/cli/output"
	"github.com/leapstack-labs/semgen/pkg/cte"
	"github.com/leapstack-labs/semgen/pkg/dialect"
	"github.com/leapstack-labs/semgen/pkg/semantic"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const explainPrompt = "semgen> "

// ExplainResult is the classification of one measure expression.
type ExplainResult struct {
	Expr       string `json:"expr" yaml:"expr"`
	Normalized string `json:"normalized" yaml:"normalized"`
	Class      string `json:"class" yaml:"class"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [expr...]",
		Short: "Classify measure expressions",
		Long: `Classify measure expressions without a model file.

Each expression is reported as an aggregate or pass-through column together
with its normalized SQL. With no arguments, expressions are read one per line
from stdin. On a terminal this starts an interactive prompt with history and
completion; type .help for its commands.`,
		Example: `  # Classify two expressions
  semgen explain "sum(amount)" "sum(amount) over (order by id)"

  # Classify against DuckDB's aggregate list
  semgen explain --dialect duckdb "arg_max(a, b)"

  # Interactive prompt
  semgen explain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, args)
		},
	}

	return cmd
}

func runExplain(cmd *cobra.Command, exprs []string) error {
	cmdCtx := NewCommandContext(cmd)
	g, err := cmdCtx.Generator()
	if err != nil {
		return err
	}

	if len(exprs) > 0 {
		return printExplained(cmdCtx.Renderer, g, exprs)
	}

	s := &explainSession{
		g:      g,
		cfg:    cmdCtx.Cfg,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return s.interactive()
	}
	return s.scan(cmd.InOrStdin())
}

func explainExpr(g *cte.Generator, expr string) ExplainResult {
	class := ClassPassThrough
	if g.IsAggregationExpr(semantic.Column{Kind: semantic.KindMeasure, Expr: expr}) {
		class = ClassAggregate
	}
	return ExplainResult{Expr: expr, Normalized: g.NormalizeExpr(expr), Class: class}
}

func printExplained(r *output.Renderer, g *cte.Generator, exprs []string) error {
	results := make([]ExplainResult, 0, len(exprs))
	for _, e := range exprs {
		results = append(results, explainExpr(g, e))
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(results)
	case output.ModeYAML:
		return r.YAML(results)
	}

	cells := make([][]string, 0, len(results))
	for _, res := range results {
		cells = append(cells, []string{res.Class, res.Normalized})
	}
	r.Table([]string{"Class", "Expr"}, cells)
	return nil
}

type explainSession struct {
	g      *cte.Generator
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
}

func (s *explainSession) scan(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if s.handleLine(sc.Text()) {
			return nil
		}
	}
	return sc.Err()
}

func (s *explainSession) interactive() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          explainPrompt,
		HistoryFile:     s.historyFile(),
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          s.out,
		Stderr:          s.errOut,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(s.out, "semgen explain (dialect: %s)\n", s.g.Dialect().Name)
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if s.handleLine(line) {
			return nil
		}
	}
}

// historyFile lives next to the run history database.
func (s *explainSession) historyFile() string {
	if s.cfg == nil || s.cfg.StatePath == "" {
		return ""
	}
	dir := filepath.Dir(s.cfg.StatePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "explain_history")
}

func (s *explainSession) completer() *readline.PrefixCompleter {
	dialects := make([]readline.PrefixCompleterInterface, 0, len(dialect.List()))
	for _, name := range dialect.List() {
		dialects = append(dialects, readline.PcItem(name))
	}
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
		readline.PcItem(".aggregates"),
		readline.PcItem(".dialect", dialects...),
	}
	for _, fn := range s.g.Dialect().Aggregates() {
		items = append(items, readline.PcItem(strings.ToLower(fn)+"("))
	}
	return readline.NewPrefixCompleter(items...)
}

// handleLine processes one input line and reports whether the session should end.
func (s *explainSession) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	res := explainExpr(s.g, line)
	_, _ = fmt.Fprintf(s.out, "%-12s %s\n", res.Class, res.Normalized)
	return false
}

func (s *explainSession) dotCommand(line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		_, _ = fmt.Fprintln(s.out, `Commands:
  .aggregates       list the aggregate functions of the current dialect
  .dialect [name]   show or switch the dialect
  .help             show this help
  .quit, .exit      leave the prompt

Any other line is classified as a measure expression.`)

	case ".aggregates":
		_, _ = fmt.Fprintln(s.out, strings.Join(s.g.Dialect().Aggregates(), ", "))

	case ".dialect":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.out, s.g.Dialect().Name)
			return false
		}
		var extra []string
		if s.cfg != nil {
			extra = s.cfg.Aggregates
		}
		d, err := dialect.Resolve(parts[1], extra)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.g = cte.New(d)
		_, _ = fmt.Fprintf(s.out, "dialect: %s\n", d.Name)

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}
