package corpus

import "github.com/yungbote/pearls-backend/internal/domain/content"

// Normalize fills derived fields: type, year, tweet count and the aggregate
// media list when the record did not carry one.
func Normalize(t *content.Thread) {
	valid := 0
	for _, tw := range t.Tweets {
		if !tw.Malformed {
			valid++
		}
	}
	if t.Type == "" {
		if valid > 1 {
			t.Type = content.ThreadTypeThread
		} else {
			t.Type = content.ThreadTypeSingle
		}
	}
	if t.Date == "" && len(t.Tweets) > 0 {
		t.Date = t.Tweets[0].Date
	}
	if t.Year == 0 {
		if ts := content.ParseDate(t.Date); !ts.IsZero() {
			t.Year = ts.Year()
		}
	}
	t.TweetCount = valid
	if len(t.Media) == 0 {
		seen := make(map[string]struct{})
		for _, tw := range t.Tweets {
			for _, m := range tw.Media {
				if _, ok := seen[m.Path]; ok {
					continue
				}
				seen[m.Path] = struct{}{}
				t.Media = append(t.Media, m)
			}
		}
	}
}
