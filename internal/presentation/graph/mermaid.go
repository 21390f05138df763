package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/mathsolver/pkg/domain"
)

// Overlay contains the path of one solve to highlight on the pipeline diagram.
type Overlay struct {
	Visited []domain.Stage
	Current domain.Stage
}

// GenerateMermaid produces a Mermaid flowchart of the solve pipeline.
// It applies semantic styling:
// - Received: ((Circle))
// - Calls to collaborators (analyzing, computing, explaining, fallback): [[Subroutine]]
// - Terminal stages: ([Stadium])
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(transitions []domain.Transition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[domain.Stage]bool)
	declare := func(s domain.Stage) {
		if declared[s] {
			return
		}
		declared[s] = true
		var opener, closer string
		switch {
		case s == domain.StageReceived:
			opener, closer = "((", "))"
		case s.Terminal():
			opener, closer = "([", "])"
		default:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", s, opener, s, closer))
	}

	for _, t := range transitions {
		declare(t.From)
		declare(t.To)
	}

	for _, t := range transitions {
		arrow := "-->"
		if t.To == domain.StageError || t.To == domain.StageFallback {
			arrow = "-.->"
		}
		if t.Label != "" {
			// Escape double quotes in the label for Mermaid
			safeLabel := strings.ReplaceAll(t.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safeLabel)
			if t.To == domain.StageError || t.To == domain.StageFallback {
				arrow = fmt.Sprintf("-. \"%s\" .->", safeLabel)
			}
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", t.From, arrow, t.To))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Stage]bool)
		for _, s := range overlay.Visited {
			if !seen[s] && declared[s] && s != overlay.Current {
				seen[s] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", s))
			}
		}

		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", overlay.Current))
		}
	}

	return sb.String()
}
