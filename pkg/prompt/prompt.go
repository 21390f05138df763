// Package prompt builds the instruction strings sent to the completion provider.
// Every builder is pure: the same input always yields the same prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/aretw0/mathsolver/pkg/domain"
)

const analysisGuidance = `You are a precise mathematics assistant.

Solve the problem below and answer using EXACTLY this format, one label per line:

OPERATION: <one of: derive, integrate, factor, simplify, zeroes, tangent, area, cosine, sine, logarithm, absolute-value>
EXPRESSION: <the expression to operate on, plain ASCII, use ^ for powers>
RESULT: <the final answer>
STEPS: <a short step-by-step solution, may span several lines>

Rules:
- For derivatives and integrals the RESULT must be an algebraic expression in the variable, never a single number.
  Example: the derivative of x^2 is "2x", not "2"; the derivative of x^3 + 3x is "3x^2 + 3".
  Example: the integral of 2x is "x^2 + C".
- Use plain text math. No LaTeX, no Markdown.
- Put STEPS last.`

// Analysis returns the primary prompt asking for a labeled, structured answer.
func Analysis(problem string) string {
	var b strings.Builder
	b.WriteString(analysisGuidance)
	b.WriteString("\n\nProblem: ")
	b.WriteString(problem)
	b.WriteString("\n")
	return b.String()
}

// Explanation returns the prompt asking for a plain-language walkthrough of a solved problem.
func Explanation(problem string, a domain.ParsedAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original problem: %s\n", problem)
	fmt.Fprintf(&b, "Operation: %s\n", a.Operation)
	fmt.Fprintf(&b, "Expression: %s\n", a.Expression)
	fmt.Fprintf(&b, "Result: %s\n", a.Result)
	if a.Steps != "" {
		fmt.Fprintf(&b, "Steps: %s\n", a.Steps)
	}
	b.WriteString("\nExplain to a student, in clear natural language, how this result is obtained. ")
	b.WriteString("Mention the rule or technique used and keep it under 200 words.")
	return b.String()
}

// Fallback returns the minimal prompt used when the structured pipeline failed.
func Fallback(problem string) string {
	return "Solve this math problem: " + problem
}
