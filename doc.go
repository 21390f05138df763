/*
Package mathsolver answers natural-language math problems by orchestrating a language model
and, optionally, a symbolic math service.

A solve runs a small state machine. The model is asked for a labeled analysis
(OPERATION, EXPRESSION, RESULT, STEPS), the answer is parsed and sanity checked, the
expression may be handed to a symbolic math service, and a second model call produces a
plain-language explanation. When the structured analysis cannot be obtained the engine
falls back to a single free-form completion.

	received -> analyzing -> (computing) -> explaining -> completed
	                \-> fallback -> completed

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/aretw0/mathsolver"
		"github.com/aretw0/mathsolver/pkg/adapters/gemini"
		"github.com/aretw0/mathsolver/pkg/adapters/newton"
	)

	func main() {
		ctx := context.Background()
		completer, err := gemini.New(ctx, gemini.Config{APIKey: os.Getenv("GEMINI_API_KEY")})
		if err != nil {
			log.Fatal(err)
		}

		eng := mathsolver.New(completer,
			mathsolver.WithSymbolicMath(newton.New(newton.DefaultBaseURL), true),
		)

		resp, err := eng.Solve(ctx, "Find the derivative of x^3")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(resp.Calculation.Result)
		fmt.Println(resp.Explanation)
	}

The same engine backs the HTTP server (pkg/adapters/http), the MCP tool server
(pkg/adapters/mcp) and the mathsolver command.
*/
package mathsolver
