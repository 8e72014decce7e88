package model

import (
	"strings"
	"unicode"
)

// CleanURL prepares a filing URL typed by a user for submission.
// Filing URLs never contain whitespace, so every whitespace rune is removed,
// including line breaks introduced by copy and paste.
func CleanURL(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}

// ParseURLList splits text holding one filing URL per line.
// Lines are trimmed and blank lines are dropped.
func ParseURLList(text string) []string {
	lines := strings.Split(text, "\n")
	urls := make([]string, 0, len(lines))
	for _, line := range lines {
		if u := strings.TrimSpace(line); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
