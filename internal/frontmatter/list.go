package frontmatter

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var listItemPattern = regexp.MustCompile(`^\s*-\s+`)

// InlineList renders values as a flow sequence: ["a", "b"].
func InlineList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, strconv.Quote(v))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// ParseList decodes block-sequence continuation lines ("  - x") into values.
// Lines that are not list items are ignored. When the lines are not valid
// YAML the items are recovered textually.
func ParseList(lines []string) []string {
	var items []string
	for _, l := range lines {
		if listItemPattern.MatchString(l) {
			items = append(items, l)
		}
	}
	if len(items) == 0 {
		return nil
	}

	var values []string
	if err := yaml.Unmarshal([]byte(strings.Join(items, "\n")), &values); err == nil {
		return values
	}

	values = nil
	for _, l := range items {
		values = append(values, Unquote(listItemPattern.ReplaceAllString(l, "")))
	}
	return values
}
