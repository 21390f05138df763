package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mathsolver/pkg/catalog"
	"github.com/aretw0/mathsolver/pkg/domain"
	"github.com/aretw0/mathsolver/pkg/parser"
)

func TestParseStructuredCompletion_AllLabels(t *testing.T) {
	raw := "OPERATION: derivative\nEXPRESSION: x^2\nRESULT: 2x\nSTEPS: apply power rule"

	got := parser.ParseStructuredCompletion(raw, "d/dx x^2")

	assert.Equal(t, domain.ParsedAnalysis{
		Operation:  "derivative",
		Expression: "x^2",
		Result:     "2x",
		Steps:      "apply power rule",
		Raw:        raw,
	}, got)
}

func TestParseStructuredCompletion_MissingLabels(t *testing.T) {
	t.Run("No Result", func(t *testing.T) {
		raw := "OPERATION: integrate\nEXPRESSION: 2x\nSTEPS: reverse power rule"
		got := parser.ParseStructuredCompletion(raw, "integrate 2x")
		assert.Equal(t, parser.DefaultResult, got.Result)
		assert.Equal(t, "integrate", got.Operation)
		assert.Equal(t, "2x", got.Expression)
		assert.Equal(t, "reverse power rule", got.Steps)
	})

	t.Run("Free Text", func(t *testing.T) {
		raw := "The answer is probably four."
		got := parser.ParseStructuredCompletion(raw, "2+2")
		assert.Equal(t, parser.DefaultOperation, got.Operation)
		assert.Equal(t, "2+2", got.Expression)
		assert.Equal(t, parser.DefaultResult, got.Result)
		assert.Equal(t, parser.DefaultSteps, got.Steps)
		assert.Equal(t, raw, got.Raw)
	})

	t.Run("Empty Value", func(t *testing.T) {
		got := parser.ParseStructuredCompletion("RESULT:   \nOPERATION: factor", "p")
		assert.Equal(t, parser.DefaultResult, got.Result)
		assert.Equal(t, "factor", got.Operation)
	})
}

func TestParseStructuredCompletion_Leniency(t *testing.T) {
	raw := "Sure! Here is the solution.\n" +
		"operation: Derive\n" +
		"**Expression:** x^3 + 3x\n" +
		"Result: 3x^2 + 3\n" +
		"RESULT: 42\n" +
		"Steps: 1. power rule on x^3\n2. constant multiple on 3x\n\nDone."

	got := parser.ParseStructuredCompletion(raw, "p")

	assert.Equal(t, "Derive", got.Operation, "labels match case-insensitively")
	assert.Equal(t, "x^3 + 3x", got.Expression, "markdown emphasis around labels is tolerated")
	assert.Equal(t, "3x^2 + 3", got.Result, "first occurrence wins")
	assert.Equal(t, "1. power rule on x^3\n2. constant multiple on 3x\n\nDone.", got.Steps)
}

func TestParseStructuredCompletion_LabelInsideLine(t *testing.T) {
	// A label only counts at the start of a line.
	raw := "The RESULT: inline should not count\nRESULT: 5"
	got := parser.ParseStructuredCompletion(raw, "p")
	assert.Equal(t, "5", got.Result)
}

func TestParseStructuredCompletion_Table(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		problem string
		want    domain.ParsedAnalysis
	}{
		{
			name:    "windows line endings",
			raw:     "OPERATION: simplify\r\nEXPRESSION: 2+2\r\nRESULT: 4\r\nSTEPS: add",
			problem: "2+2",
			want:    domain.ParsedAnalysis{Operation: "simplify", Expression: "2+2", Result: "4", Steps: "add"},
		},
		{
			name:    "only result",
			raw:     "RESULT: x = 3",
			problem: "solve 2x = 6",
			want: domain.ParsedAnalysis{
				Operation:  parser.DefaultOperation,
				Expression: "solve 2x = 6",
				Result:     "x = 3",
				Steps:      parser.DefaultSteps,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.ParseStructuredCompletion(tt.raw, tt.problem)
			tt.want.Raw = tt.raw
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseStructuredCompletion() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		result  string
		wantErr bool
	}{
		{"Derivative Constant", "derivative", "7", true},
		{"Derive Constant", "derive", "12", true},
		{"Differentiate Constant", "differentiate", "3", true},
		{"Derivative Expression", "derivative", "2x", false},
		{"Derivative Negative", "derivative", "-7", false},
		{"Derivative Decimal", "derivative", "7.5", false},
		{"Integral Constant", "integrate", "7", false},
		{"Simplify Constant", "simplify", "7", false},
		{"Unknown Operation", parser.DefaultOperation, "7", false},
		{"Verb Before Derivative", "Compute the derivative", "7", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parser.Validate(domain.ParsedAnalysis{Operation: tt.op, Result: tt.result}, nil)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.result, verr.Result)
		})
	}
}

func TestValidate_UsesGivenCatalog(t *testing.T) {
	c, err := catalog.Parse([]byte("operations:\n  - name: derive\n    token: derive\n    aliases: [d/dx, ddx]\n"), nil)
	require.NoError(t, err)

	a := domain.ParsedAnalysis{Operation: "ddx", Result: "7"}
	var verr *domain.ValidationError
	require.ErrorAs(t, parser.Validate(a, c), &verr)
	assert.Equal(t, "ddx", verr.Operation)

	assert.NoError(t, parser.Validate(a, nil), "the default catalog has no ddx alias")
}
