package view

import "strings"

// matches applies the case-insensitive substring filter across a
// primary and a secondary field. An empty filter matches everything.
func matches(filter, primary, secondary string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(filter)
	return strings.Contains(strings.ToLower(primary), f) ||
		strings.Contains(strings.ToLower(secondary), f)
}
