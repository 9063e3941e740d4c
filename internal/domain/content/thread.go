package content

import (
	"strings"
	"time"
)

const (
	ThreadTypeThread = "thread"
	ThreadTypeSingle = "single"
)

// Categories known to the archive. Threads may also carry free-form labels.
var KnownCategories = []string{
	"Pearl",
	"Tweetorial",
	"Case Study",
	"Echo",
	"Hemodynamics",
	"Treatment",
	"Diagnosis",
	"Video",
	"Image",
	"General",
}

type Tweet struct {
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
	Text      string  `json:"text"`
	Media     []Media `json:"media"`

	// Malformed marks a slot the loader could not decode. It holds the
	// position so later tweets keep their original index, and never renders.
	Malformed bool `json:"-"`
}

// Answer is revealed on demand by clients; it takes no part in resolution.
type Answer struct {
	Text  string  `json:"text,omitempty"`
	Media []Media `json:"media,omitempty"`
}

// Thread is an immutable corpus record.
type Thread struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Date       string   `json:"date"`
	Year       int      `json:"year"`
	TweetCount int      `json:"tweet_count"`
	IsPearl    bool     `json:"is_pearl"`
	Categories []string `json:"categories"`
	Media      []Media  `json:"media"`
	Tweets     []Tweet  `json:"tweets"`
	Answer     *Answer  `json:"answer,omitempty"`
}

func (t *Thread) HasCategory(category string) bool {
	for _, c := range t.Categories {
		if c == category {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Mon Jan 02 15:04:05 -0700 2006",
}

// ParseDate accepts the date shapes seen in exports. The zero time means unparseable.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
