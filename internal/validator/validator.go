package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/mathsolver/pkg/catalog"
)

// ValidateCatalog checks that every alias resolves to its own operation, that the default
// token is present, and that every example names a known operation.
func ValidateCatalog(c *catalog.Catalog) error {
	var errors []string

	ops := c.Operations()
	if len(ops) == 0 {
		return fmt.Errorf("catalog declares no operations")
	}

	hasDefault := false
	for _, op := range ops {
		if op.Token == catalog.DefaultToken {
			hasDefault = true
		}
		for _, alias := range op.Aliases {
			// An earlier declaration wins, so a later duplicate is dead.
			if got := c.Canonicalize(alias); got != op.Name {
				errors = append(errors, fmt.Sprintf("Alias '%s' of '%s' resolves to '%s'", alias, op.Name, got))
			}
		}
	}
	if !hasDefault {
		errors = append(errors, fmt.Sprintf("No operation uses the default token '%s'", catalog.DefaultToken))
	}

	for _, ex := range c.Examples() {
		if strings.TrimSpace(ex.Problem) == "" {
			errors = append(errors, "Example with empty problem")
			continue
		}
		if c.Canonicalize(ex.Operation) == "" {
			errors = append(errors, fmt.Sprintf("Example '%s' names unknown operation '%s'", ex.Problem, ex.Operation))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}
