package corpus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/pearls-backend/internal/domain/content"
	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

// Corpus is the loaded, immutable base dataset. Callers must not modify it.
type Corpus struct {
	Threads  []content.Thread
	LoadedAt time.Time
	Source   string
	Report   DecodeReport

	ids   []string
	byID  map[string]int
	index sync.Once
}

func (c *Corpus) buildIndex() {
	c.index.Do(func() {
		c.ids = make([]string, len(c.Threads))
		c.byID = make(map[string]int, len(c.Threads))
		for i := range c.Threads {
			c.ids[i] = c.Threads[i].ID
			c.byID[c.Threads[i].ID] = i
		}
	})
}

// IDs lists thread ids in corpus order.
func (c *Corpus) IDs() []string {
	c.buildIndex()
	return c.ids
}

func (c *Corpus) Thread(id string) (*content.Thread, bool) {
	c.buildIndex()
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.Threads[i], true
}

// New wraps already-decoded threads, mainly for tests and the CLI.
func New(threads []content.Thread) *Corpus {
	for i := range threads {
		Normalize(&threads[i])
	}
	return &Corpus{Threads: threads, LoadedAt: time.Now().UTC(), Report: DecodeReport{Records: len(threads), Threads: len(threads)}}
}

type Loader struct {
	source Source
	log    *logger.Logger
}

func NewLoader(source Source, baseLog *logger.Logger) *Loader {
	return &Loader{source: source, log: baseLog.With("component", "CorpusLoader")}
}

// Load fetches and decodes the corpus once. Any failure is reported as
// ErrCorpusUnavailable since nothing can be served without it.
func (l *Loader) Load(ctx context.Context) (*Corpus, error) {
	start := time.Now()
	rc, err := l.source.Open(ctx)
	if err != nil {
		l.log.Error("Corpus open failed", "source", l.source.String(), "error", err)
		return nil, fmt.Errorf("open corpus %s: %v: %w", l.source, err, pkgerrors.ErrCorpusUnavailable)
	}
	defer rc.Close()

	threads, rep, err := Decode(rc)
	if err != nil {
		l.log.Error("Corpus decode failed", "source", l.source.String(), "error", err)
		return nil, fmt.Errorf("decode corpus %s: %v: %w", l.source, err, pkgerrors.ErrCorpusUnavailable)
	}
	c := &Corpus{Threads: threads, LoadedAt: time.Now().UTC(), Source: l.source.String(), Report: rep}
	c.buildIndex()
	l.log.Info("Corpus loaded",
		"source", c.Source,
		"threads", rep.Threads,
		"skipped_records", rep.SkippedRecords,
		"skipped_tweets", rep.SkippedTweets,
		"duplicate_ids", rep.DuplicateIDs,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return c, nil
}
