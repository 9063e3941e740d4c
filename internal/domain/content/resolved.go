package content

// ResolvedTweet is a surviving tweet after overlays were applied. Index is the
// tweet's position in the original corpus sequence, never in the resolved one.
type ResolvedTweet struct {
	Index       int      `json:"index"`
	Date        string   `json:"date"`
	Timestamp   int64    `json:"timestamp"`
	Text        string   `json:"text"`
	Media       []Media  `json:"media"`
	Edited      bool     `json:"edited"`
	Ordinal     int      `json:"ordinal,omitempty"`
	DisplayText string   `json:"display_text"`
	URLs        []string `json:"urls,omitempty"`
}

type ResolvedThread struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Date       string          `json:"date"`
	Year       int             `json:"year"`
	TweetCount int             `json:"tweet_count"`
	IsPearl    bool            `json:"is_pearl"`
	Categories []string        `json:"categories"`
	Media      []Media         `json:"media"`
	Tweets     []ResolvedTweet `json:"tweets"`
	Answer     *Answer         `json:"answer,omitempty"`
	// Mutated is true when any overlay record changed this thread.
	Mutated bool `json:"mutated"`
}

func (t *ResolvedThread) HasCategory(category string) bool {
	for _, c := range t.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// OriginalIndices lists the corpus indices of the surviving tweets.
func (t *ResolvedThread) OriginalIndices() []int {
	out := make([]int, len(t.Tweets))
	for i, tw := range t.Tweets {
		out[i] = tw.Index
	}
	return out
}
