// Package selector sanitizes user-supplied CSS selector lists before they
// reach the cleaner. Invalid selectors are dropped rather than rejected, so
// a single typo never disables a whole list.
package selector

import (
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Valid reports whether s parses as a CSS selector group.
func Valid(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	_, err := cascadia.ParseGroup(s)
	return err == nil
}

// ParseList splits a comma-separated selector list, trims each entry and
// drops entries that do not parse. The result is never nil.
func ParseList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if Valid(part) {
			out = append(out, part)
		}
	}
	return out
}

// Sanitize trims and validates an already split list.
func Sanitize(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, ParseList(s)...)
	}
	return out
}

// Join renders a list the way ParseList reads it.
func Join(list []string) string {
	return strings.Join(list, ", ")
}

// ParseIndent reads an indentation width. Anything that is not a
// non-negative integer yields 0.
func ParseIndent(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
