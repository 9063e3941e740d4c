package content

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ordinalRe = regexp.MustCompile(`^\s*(\d{1,3})\s*/\s*`)
	urlRe     = regexp.MustCompile(`https?://[^\s<>"]+`)
	hashtagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_]+)`)
)

// SplitOrdinal strips a leading "N/" thread position marker.
// It returns 0 when the text carries no marker.
func SplitOrdinal(text string) (int, string) {
	m := ordinalRe.FindStringSubmatchIndex(text)
	if m == nil {
		return 0, text
	}
	n, err := strconv.Atoi(text[m[2]:m[3]])
	if err != nil {
		return 0, text
	}
	return n, text[m[1]:]
}

// ExtractURLs lists embedded links in order of appearance, trailing punctuation trimmed.
func ExtractURLs(text string) []string {
	raw := urlRe.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, u := range raw {
		out = append(out, strings.TrimRight(u, ".,;:!?)]}'\""))
	}
	return out
}

// ExtractHashtags returns hashtags without the leading '#'.
func ExtractHashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
