package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// embeddedMarkers are tried in order; the first structural match wins.
// Glassdoor has shipped all three shapes at different times.
var embeddedMarkers = []string{
	"window.apolloState",
	"window.appCache",
}

// extractJSONAfter locates the first balanced JSON object following
// marker in page. It tolerates arbitrary assignment syntax between the
// marker and the opening brace and respects string literals while
// scanning for the closing brace.
func extractJSONAfter(page, marker string) (string, bool) {
	idx := strings.Index(page, marker)
	if idx < 0 {
		return "", false
	}

	start := strings.IndexByte(page[idx:], '{')
	if start < 0 {
		return "", false
	}
	start += idx

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(page); i++ {
		ch := page[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return page[start : i+1], true
			}
		}
	}
	return "", false
}

// parseEmbeddedState scans the page for the known embedded-state
// markers and parses whichever is found first. The returned marker
// names the variant that matched. A missing marker is not an error;
// callers fall back to HTML parsing. A present-but-unparseable blob is
// a ParseFailure.
func parseEmbeddedState(page string) (map[string]any, string, error) {
	for _, marker := range embeddedMarkers {
		raw, ok := extractJSONAfter(page, marker)
		if !ok {
			continue
		}
		var state map[string]any
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return nil, marker, WrapError(KindParseFailure, err, "embedded state under %s is not valid JSON", marker)
		}
		return state, marker, nil
	}

	// __NEXT_DATA__ ships as a dedicated script tag rather than an
	// inline assignment.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(page)); err == nil {
		script := doc.Find("script#__NEXT_DATA__").First()
		if script.Length() > 0 {
			var state map[string]any
			if err := json.Unmarshal([]byte(script.Text()), &state); err != nil {
				return nil, "__NEXT_DATA__", WrapError(KindParseFailure, err, "__NEXT_DATA__ is not valid JSON")
			}
			return state, "__NEXT_DATA__", nil
		}
	}

	return nil, "", nil
}

// Apollo-style caches are flat mappings of opaque keys to objects.
// Field names drift between schema versions, so each field has an
// ordered alias list and the first occurrence across all values wins.
var (
	titleAliases    = []string{"jobTitle", "title"}
	employerAliases = []string{"employerName", "companyName"}
	descAliases     = []string{"description", "jobDescription", "descriptionFragment"}
)

// scanApolloCache walks every value object in the state looking for
// the first occurrence of each field alias. The search recurses one
// level into nested objects so shapes like employer.name are found.
func scanApolloCache(state map[string]any) (title, employer, description string) {
	var walk func(obj map[string]any, depth int)
	walk = func(obj map[string]any, depth int) {
		if title == "" {
			title = firstStringAlias(obj, titleAliases)
		}
		if employer == "" {
			employer = firstStringAlias(obj, employerAliases)
			if employer == "" {
				if emp, ok := obj["employer"].(map[string]any); ok {
					if name, ok := emp["name"].(string); ok {
						employer = name
					}
				}
			}
		}
		if description == "" {
			description = firstStringAlias(obj, descAliases)
		}
		if title != "" && employer != "" && description != "" {
			return
		}
		if depth >= 6 {
			return
		}
		for _, v := range obj {
			if nested, ok := v.(map[string]any); ok {
				walk(nested, depth+1)
				if title != "" && employer != "" && description != "" {
					return
				}
			}
		}
	}

	walk(state, 0)
	return title, employer, description
}

func firstStringAlias(obj map[string]any, aliases []string) string {
	for _, alias := range aliases {
		if s, ok := obj[alias].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
