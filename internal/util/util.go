// Package util holds small generic containers and string helpers; the
// grammar package uses its sets and the parse package its stack.
package util

import (
	"sort"
	"strings"
)

// MakeTextList gives a nice list of things based on their display name.
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	if len(items) == 1 {
		output += items[0]
	} else if len(items) == 2 {
		output += items[0] + " and " + items[1]
	} else {
		items = append([]string{}, items...)
		items[len(items)-1] = "and " + items[len(items)-1]
		output += strings.Join(items, ", ")
	}

	return output
}

// ArticleFor returns "a" or "an" depending on whether the first letter of s
// is a vowel sound. If capital is true, the article is capitalized.
func ArticleFor(s string, capital bool) string {
	article := "a"
	if len(s) > 0 {
		switch s[0] {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			article = "an"
		}
	}
	if capital {
		article = strings.ToUpper(article[:1]) + article[1:]
	}
	return article
}

// OrderedKeys returns the keys of m sorted lexically.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
