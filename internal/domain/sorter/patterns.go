package sorter

import (
	"regexp"
	"strings"
)

// NoPattern marks a file that matched no date pattern.
const NoPattern = -1

type datePattern struct {
	name string
	re   *regexp.Regexp
	sep  string
}

// Tried in order; the first match wins.
var patterns = []datePattern{
	{name: "MM_DD_YYYY", re: regexp.MustCompile(`(\d{2})_(\d{2})_(\d{4})`), sep: "_"},
	{name: "MM-DD-YYYY", re: regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})`), sep: "-"},
	{name: "MM.DD.YYYY", re: regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})`), sep: "."},
	{name: "MMDDYYYY", re: regexp.MustCompile(`(\d{2})(\d{2})(\d{4})`), sep: ""},
	{name: "DDMonYYYY", re: regexp.MustCompile(`(\d{2})([A-Za-z]{3})(\d{4})`), sep: ""},
	{name: "DD-Mon-YYYY", re: regexp.MustCompile(`(\d{2})-([A-Za-z]{3})-(\d{4})`), sep: "-"},
	{name: "DD_Mon_YYYY", re: regexp.MustCompile(`(\d{2})_([A-Za-z]{3})_(\d{4})`), sep: "_"},
	{name: "DD.Mon.YYYY", re: regexp.MustCompile(`(\d{2})\.([A-Za-z]{3})\.(\d{4})`), sep: "."},
}

// PatternName returns the human-readable form of pattern i.
func PatternName(i int) string {
	if i < 0 || i >= len(patterns) {
		return "none"
	}
	return patterns[i].name
}

// Rename returns the year-first name for a file whose name embeds a date.
// The new name is the date groups reversed and joined by the pattern's
// separator, followed by the text after the last dot of the original name.
// ok is false when no pattern matches.
func Rename(name string) (newName string, pattern int, ok bool) {
	for i, p := range patterns {
		groups := p.re.FindStringSubmatch(name)
		if groups == nil {
			continue
		}
		parts := groups[1:]
		reversed := make([]string, len(parts))
		for j, g := range parts {
			reversed[len(parts)-1-j] = g
		}
		newName = strings.Join(reversed, p.sep)
		if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
			newName += name[dot:]
		}
		return newName, i, true
	}
	return "", NoPattern, false
}
