package graph

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/aretw0/unitgrid/pkg/flow"
)

// FlowOverlay marks rows to highlight on the graph.
type FlowOverlay struct {
	// Invalid lists keys of rows holding invalid cells.
	Invalid []string
	// Current is the key of the selected row.
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of the rows' next pointers.
// It applies semantic styling:
// - Chain start (nothing points to it): ((Circle))
// - Chain end (no next): ([Stadium])
// - Next pointing at a missing key: {{Hexagon}} reached by a dotted edge
// - Default: [Rectangle]
// Rows with an empty key are left out, as the flow sort drops them.
func GenerateMermaid(rows []domain.Row, overlay *FlowOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	// Later rows win for duplicate keys, as in the flow sort.
	keys := make(map[string]bool)
	nextOf := make(map[string]string)
	for _, r := range rows {
		if k := r.Cell(flow.KeyColumn); k != "" {
			keys[k] = true
			nextOf[k] = r.Cell(flow.NextColumn)
		}
	}
	incoming := make(map[string]bool)
	for _, next := range nextOf {
		if next != "" {
			incoming[next] = true
		}
	}

	seen := make(map[string]bool)
	var missing []string
	for _, r := range rows {
		key := r.Cell(flow.KeyColumn)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		next := nextOf[key]

		opener, closer := "[", "]"
		switch {
		case !incoming[key]:
			opener, closer = "((", "))"
		case next == "":
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", nodeID(key), opener, label(key), closer))

		switch {
		case next == "":
		case keys[next]:
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", nodeID(key), nodeID(next)))
		default:
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", nodeID(key), nodeID(next)))
			missing = append(missing, next)
		}
	}

	for _, m := range missing {
		if seen[m] {
			continue
		}
		seen[m] = true
		sb.WriteString(fmt.Sprintf("    %s{{\"%s ?\"}}\n", nodeID(m), label(m)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on either theme.
		sb.WriteString("    classDef invalid fill:#ffc7ce,stroke:#9c0006,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		for _, key := range overlay.Invalid {
			if key != "" && keys[key] && !styled[key] {
				styled[key] = true
				sb.WriteString(fmt.Sprintf("    class %s invalid;\n", nodeID(key)))
			}
		}
		if overlay.Current != "" && keys[overlay.Current] {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", nodeID(overlay.Current)))
		}
	}

	return sb.String()
}

// nodeID turns a row key into a Mermaid identifier. The prefix keeps keys such as
// "end" from colliding with keywords.
func nodeID(key string) string {
	var sb strings.Builder
	sb.WriteString("n_")
	for _, r := range key {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
		} else {
			sb.WriteString(fmt.Sprintf("_%x_", r))
		}
	}
	return sb.String()
}

func label(key string) string {
	return strings.ReplaceAll(key, "\"", "'")
}
