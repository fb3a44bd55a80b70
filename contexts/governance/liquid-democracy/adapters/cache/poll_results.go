package cache

import (
	"liquido/contexts/governance/liquid-democracy/ports"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultPollResultCacheSize = 256

// PollResults is a bounded LRU of finished poll results. Entries never go
// stale because a finished poll is immutable.
type PollResults struct {
	entries *lru.Cache[string, ports.PollResult]
}

func NewPollResults(size int) (*PollResults, error) {
	if size <= 0 {
		size = DefaultPollResultCacheSize
	}
	entries, err := lru.New[string, ports.PollResult](size)
	if err != nil {
		return nil, err
	}
	return &PollResults{entries: entries}, nil
}

func (c *PollResults) Get(pollID string) (ports.PollResult, bool) {
	return c.entries.Get(pollID)
}

func (c *PollResults) Add(pollID string, result ports.PollResult) {
	c.entries.Add(pollID, result)
}

var _ ports.PollResultCache = (*PollResults)(nil)
