// Package parser extracts labeled fields from free-text model output.
//
// Completions are natural language, so extraction is lenient: every label is matched on
// its own and a missing label falls back to a default instead of failing the parse.
package parser

import (
	"regexp"
	"strings"

	"github.com/aretw0/mathsolver/pkg/catalog"
	"github.com/aretw0/mathsolver/pkg/domain"
)

// Defaults substituted for missing labels.
const (
	DefaultOperation = "unknown"
	DefaultResult    = "Could not determine result"
	DefaultSteps     = "Steps not provided"
)

// Single-line labels capture the rest of their line. (?m) makes ^ match at line starts so
// the first occurrence wins even if the label recurs later.
var (
	operationRe  = regexp.MustCompile(`(?im)^[ \t*#-]*OPERATION[ \t*]*:[ \t*]*(.*)$`)
	expressionRe = regexp.MustCompile(`(?im)^[ \t*#-]*EXPRESSION[ \t*]*:[ \t*]*(.*)$`)
	resultRe     = regexp.MustCompile(`(?im)^[ \t*#-]*RESULT[ \t*]*:[ \t*]*(.*)$`)
	// STEPS runs to the end of the text and keeps internal newlines.
	stepsRe = regexp.MustCompile(`(?ims)^[ \t*#-]*STEPS[ \t*]*:[ \t*]*(.*)\z`)

	bareIntegerRe = regexp.MustCompile(`^\d+$`)
)

// ParseStructuredCompletion extracts operation, expression, result and steps from text.
// problem is used as the expression default.
func ParseStructuredCompletion(text, problem string) domain.ParsedAnalysis {
	return domain.ParsedAnalysis{
		Operation:  extract(operationRe, text, DefaultOperation),
		Expression: extract(expressionRe, text, problem),
		Result:     extract(resultRe, text, DefaultResult),
		Steps:      extract(stepsRe, text, DefaultSteps),
		Raw:        text,
	}
}

func extract(re *regexp.Regexp, text, def string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return def
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return def
	}
	return v
}

// Validate is a sanity check, not a correctness check: a derivative whose result is a bare
// integer is flagged. No other operation is inspected. Operation labels are resolved through
// c; a nil catalog means catalog.Default().
func Validate(a domain.ParsedAnalysis, c *catalog.Catalog) error {
	if c == nil {
		c = catalog.Default()
	}
	if !isDerivative(a.Operation, c) {
		return nil
	}
	if bareIntegerRe.MatchString(strings.TrimSpace(a.Result)) {
		return &domain.ValidationError{
			Operation: a.Operation,
			Result:    a.Result,
			Reason:    "derivative result must be an expression, not a constant",
		}
	}
	return nil
}

func isDerivative(op string, c *catalog.Catalog) bool {
	if strings.Contains(strings.ToLower(op), "deriv") {
		return true
	}
	return c.Canonicalize(op) == "derive"
}
