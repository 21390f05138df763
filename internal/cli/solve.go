package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/mathsolver"
	"github.com/aretw0/mathsolver/internal/presentation/tui"
	"github.com/aretw0/mathsolver/pkg/catalog"
)

// SolveOptions contains the configuration for the solve command.
type SolveOptions struct {
	Problem  string
	JSON     bool
	Pretty   bool // Render markdown for a terminal
	Headless bool
	Graph    *StageTrace
}

// RunSolve solves opts.Problem, or reads problems line by line from in when it is empty.
func RunSolve(ctx context.Context, app *App, opts SolveOptions, in io.Reader, out io.Writer) error {
	r := mathsolver.NewRunner()
	r.Output = out
	r.JSON = opts.JSON
	r.Headless = opts.Headless || opts.JSON
	if opts.Pretty && !opts.JSON {
		r.Renderer = tui.NewRenderer()
	}

	var err error
	if strings.TrimSpace(opts.Problem) != "" {
		err = r.SolveOnce(ctx, app.Engine, opts.Problem)
	} else {
		r.Input = NewInterruptibleReader(in, ctx.Done())
		err = handleExecutionError(r.Run(ctx, app.Engine))
	}

	if opts.Graph != nil && !opts.JSON {
		fmt.Fprintln(out)
		fmt.Fprint(out, opts.Graph.Mermaid())
	}
	return err
}

// OperationsMarkdown renders the catalog as a markdown table.
func OperationsMarkdown(c *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("| Operation | Token | Description |\n")
	b.WriteString("|---|---|---|\n")
	for _, op := range c.Operations() {
		fmt.Fprintf(&b, "| %s | `%s` | %s |\n", op.Name, op.Token, op.Description)
	}
	return b.String()
}
