package mathsolver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/mathsolver/pkg/domain"
)

// Runner solves problems against an Engine using the provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	JSON     bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before use.
func NewRunner() *Runner {
	return &Runner{}
}

// SolveOnce solves a single problem and writes the result to Output.
func (r *Runner) SolveOnce(ctx context.Context, engine *Engine, problem string) error {
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	resp, err := engine.Solve(ctx, problem)
	if err != nil {
		return err
	}
	return r.write(resp)
}

// Run reads one problem per line from Input until EOF, "exit" or "quit".
// A failed problem is reported and the loop continues; a cancelled context stops it.
func (r *Runner) Run(ctx context.Context, engine *Engine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	if !r.Headless {
		fmt.Fprintln(r.Output, "--- mathsolver (type a problem, 'exit' to quit) ---")
	}

	for {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lineReader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		eof := err != nil

		problem := strings.TrimSpace(text)
		if problem == "exit" || problem == "quit" {
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		}

		if problem != "" {
			if err := r.SolveOnce(ctx, engine, problem); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Fprintf(r.Output, "Error: %v\n", err)
			}
		}
		if eof {
			return nil
		}
	}
}

func (r *Runner) write(resp *domain.SolveResponse) error {
	if r.JSON {
		enc := json.NewEncoder(r.Output)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	output := FormatMarkdown(resp)
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		}
	}
	_, err := fmt.Fprintln(r.Output, strings.TrimSpace(output))
	return err
}

// FormatMarkdown renders a response as a short markdown document.
func FormatMarkdown(resp *domain.SolveResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Operation:** %s\n\n", resp.Analysis.Operation)
	fmt.Fprintf(&b, "**Expression:** `%s`\n\n", resp.Analysis.Expression)
	fmt.Fprintf(&b, "**Result:** %s _(%s)_\n\n", resp.Calculation.Result, resp.Calculation.Method)
	if resp.Explanation != "" && resp.Explanation != resp.Calculation.Result {
		b.WriteString(resp.Explanation)
		b.WriteString("\n\n")
	}
	for _, w := range resp.Warnings {
		fmt.Fprintf(&b, "> %s\n", w)
	}
	return b.String()
}
