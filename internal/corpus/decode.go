package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/pearls-backend/internal/domain/content"
)

// DecodeReport counts what Decode had to skip or repair.
type DecodeReport struct {
	Records        int
	Threads        int
	SkippedRecords int
	SkippedTweets  int
	DuplicateIDs   int
}

type wireMedia struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	LocalPath string `json:"local_path"`
	MediaURL  string `json:"media_url"`
	Remote    *bool  `json:"remote"`
	VideoURL  string `json:"video_url"`
}

type wireTweet struct {
	Date      string      `json:"date"`
	Timestamp json.Number `json:"timestamp"`
	Text      string      `json:"text"`
	Media     []wireMedia `json:"media"`
}

type wireAnswer struct {
	Text  string      `json:"text"`
	Media []wireMedia `json:"media"`
}

type wireThread struct {
	ID         json.RawMessage   `json:"id"`
	Type       string            `json:"type"`
	Date       string            `json:"date"`
	Year       int               `json:"year"`
	IsPearl    bool              `json:"is_pearl"`
	Categories []string          `json:"categories"`
	Media      []wireMedia       `json:"media"`
	Tweets     []json.RawMessage `json:"tweets"`
	Answer     *wireAnswer       `json:"answer"`
}

// Decode reads a JSON array of threads. Unknown fields are ignored; a record
// that cannot be decoded or has no id is skipped rather than failing the load.
// Only a stream that is not a JSON array is an error.
func Decode(r io.Reader) ([]content.Thread, DecodeReport, error) {
	var rep DecodeReport
	var records []json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, rep, fmt.Errorf("decode corpus array: %w", err)
	}
	rep.Records = len(records)
	seen := make(map[string]struct{}, len(records))
	out := make([]content.Thread, 0, len(records))
	for _, raw := range records {
		t, skippedTweets, ok := decodeThread(raw)
		if !ok {
			rep.SkippedRecords++
			continue
		}
		if _, dup := seen[t.ID]; dup {
			rep.DuplicateIDs++
			continue
		}
		seen[t.ID] = struct{}{}
		rep.SkippedTweets += skippedTweets
		out = append(out, t)
	}
	rep.Threads = len(out)
	return out, rep, nil
}

func decodeThread(raw json.RawMessage) (content.Thread, int, bool) {
	var w wireThread
	if err := json.Unmarshal(raw, &w); err != nil {
		return content.Thread{}, 0, false
	}
	id := decodeID(w.ID)
	if id == "" {
		return content.Thread{}, 0, false
	}
	t := content.Thread{
		ID:         id,
		Type:       w.Type,
		Date:       w.Date,
		Year:       w.Year,
		IsPearl:    w.IsPearl,
		Categories: dedupe(w.Categories),
		Media:      convertMedia(w.Media),
	}
	skipped := 0
	for _, rt := range w.Tweets {
		var wt wireTweet
		if err := json.Unmarshal(rt, &wt); err != nil {
			skipped++
			t.Tweets = append(t.Tweets, content.Tweet{Malformed: true})
			continue
		}
		ts, _ := wt.Timestamp.Int64()
		t.Tweets = append(t.Tweets, content.Tweet{
			Date:      wt.Date,
			Timestamp: ts,
			Text:      wt.Text,
			Media:     convertMedia(wt.Media),
		})
	}
	if w.Answer != nil && (w.Answer.Text != "" || len(w.Answer.Media) > 0) {
		t.Answer = &content.Answer{Text: w.Answer.Text, Media: convertMedia(w.Answer.Media)}
	}
	Normalize(&t)
	return t, skipped, true
}

// decodeID accepts string or numeric ids.
func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func convertMedia(in []wireMedia) []content.Media {
	if len(in) == 0 {
		return nil
	}
	out := make([]content.Media, 0, len(in))
	for _, m := range in {
		path := firstNonEmpty(m.Path, m.LocalPath, m.MediaURL)
		if path == "" && m.VideoURL == "" {
			continue
		}
		cm := content.Media{
			Type:     content.NormalizeKind(m.Type),
			Path:     path,
			VideoURL: m.VideoURL,
		}
		switch {
		case m.Remote != nil:
			cm.Remote = *m.Remote
		case m.Path == "" && m.LocalPath == "" && m.MediaURL != "":
			cm.Remote = true
		}
		out = append(out, cm)
	}
	return out
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
