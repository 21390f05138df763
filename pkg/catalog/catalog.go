// Package catalog holds the immutable table of supported operations.
//
// Canonical names are what the pipeline uses internally. Tokens are what the symbolic math
// service expects in its URL. The table is decoded once from embedded YAML and never
// mutated afterwards, so it is safe for concurrent use.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultToken is used whenever an operation cannot be mapped.
const DefaultToken = "simplify"

//go:embed operations.yaml
var operationsYAML []byte

//go:embed examples.yaml
var examplesYAML []byte

// Operation is one catalog entry.
type Operation struct {
	Name        string   `yaml:"name" json:"name"`
	Token       string   `yaml:"token" json:"token"`
	Description string   `yaml:"description" json:"description"`
	Aliases     []string `yaml:"aliases" json:"aliases,omitempty"`
}

// Example is a sample problem with its expected operation label.
type Example struct {
	Problem   string `yaml:"problem" json:"problem"`
	Operation string `yaml:"operation" json:"operation"`
}

// Catalog maps canonical operation names to service tokens.
type Catalog struct {
	ops      []Operation
	byName   map[string]Operation
	aliases  map[string]string
	examples []Example
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the process-wide catalog built from the embedded tables.
// It panics if the embedded YAML is malformed, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(operationsYAML, examplesYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded tables: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load reads a catalog from YAML files. An empty path selects the embedded table.
func Load(operationsPath, examplesPath string) (*Catalog, error) {
	if operationsPath == "" && examplesPath == "" {
		return Default(), nil
	}
	ops, err := readOr(operationsPath, operationsYAML)
	if err != nil {
		return nil, err
	}
	examples, err := readOr(examplesPath, examplesYAML)
	if err != nil {
		return nil, err
	}
	return Parse(ops, examples)
}

func readOr(path string, embedded []byte) ([]byte, error) {
	if path == "" {
		return embedded, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return data, nil
}

// Parse builds a catalog from YAML documents. examples may be nil.
func Parse(operations, examples []byte) (*Catalog, error) {
	var opsDoc struct {
		Operations []Operation `yaml:"operations"`
	}
	if err := yaml.Unmarshal(operations, &opsDoc); err != nil {
		return nil, fmt.Errorf("failed to parse operations: %w", err)
	}

	c := &Catalog{
		byName:  make(map[string]Operation, len(opsDoc.Operations)),
		aliases: make(map[string]string),
	}
	for _, op := range opsDoc.Operations {
		name := normalize(op.Name)
		if name == "" || op.Token == "" {
			return nil, fmt.Errorf("operation %q: name and token are required", op.Name)
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("operation %q declared twice", op.Name)
		}
		op.Name = name
		c.byName[name] = op
		c.ops = append(c.ops, op)
		c.aliases[name] = name
		for _, alias := range op.Aliases {
			// First declaration wins so "tan" cannot shadow "tangent".
			if _, taken := c.aliases[normalize(alias)]; !taken {
				c.aliases[normalize(alias)] = name
			}
		}
	}
	sort.Slice(c.ops, func(i, j int) bool { return c.ops[i].Name < c.ops[j].Name })

	if len(examples) > 0 {
		var exDoc struct {
			Examples []Example `yaml:"examples"`
		}
		if err := yaml.Unmarshal(examples, &exDoc); err != nil {
			return nil, fmt.Errorf("failed to parse examples: %w", err)
		}
		c.examples = exDoc.Examples
	}
	return c, nil
}

// Canonicalize maps a free-text operation label to a canonical name.
// It returns "" when nothing matches.
func (c *Catalog) Canonicalize(raw string) string {
	key := normalize(raw)
	if key == "" {
		return ""
	}
	if name, ok := c.aliases[key]; ok {
		return name
	}
	// Models often answer with a phrase ("Compute the derivative of f(x)"); try each word.
	// Generic verbs map to the default operation, so a specific hit anywhere in the phrase
	// wins over them.
	fallback := ""
	for _, word := range strings.FieldsFunc(key, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/' || r == ','
	}) {
		name, ok := c.aliases[word]
		if !ok {
			continue
		}
		if c.byName[name].Token != DefaultToken {
			return name
		}
		if fallback == "" {
			fallback = name
		}
	}
	return fallback
}

// Token returns the service token for a canonical name.
func (c *Catalog) Token(canonical string) (string, bool) {
	op, ok := c.byName[normalize(canonical)]
	if !ok {
		return "", false
	}
	return op.Token, true
}

// TokenFor canonicalizes raw and returns its token, or DefaultToken.
func (c *Catalog) TokenFor(raw string) string {
	if tok, ok := c.Token(c.Canonicalize(raw)); ok {
		return tok
	}
	return DefaultToken
}

// Names returns the sorted canonical names.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.ops))
	for i, op := range c.ops {
		names[i] = op.Name
	}
	return names
}

// Operations returns a copy of every entry, sorted by name.
func (c *Catalog) Operations() []Operation {
	out := make([]Operation, len(c.ops))
	copy(out, c.ops)
	return out
}

// Examples returns a copy of the sample problems.
func (c *Catalog) Examples() []Example {
	out := make([]Example, len(c.examples))
	copy(out, c.examples)
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
