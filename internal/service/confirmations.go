package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// confirmations holds the outstanding delete tokens, one per article. A new
// request for the same article replaces the previous token.
type confirmations struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]pendingDelete
}

type pendingDelete struct {
	token     string
	expiresAt time.Time
}

func newConfirmations(ttl time.Duration) *confirmations {
	return &confirmations{
		ttl:     ttl,
		pending: make(map[string]pendingDelete),
	}
}

// issue creates a token for articleID valid until now+ttl
func (c *confirmations) issue(articleID string, now time.Time) pendingDelete {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, p := range c.pending {
		if !now.Before(p.expiresAt) {
			delete(c.pending, id)
		}
	}

	p := pendingDelete{token: uuid.NewString(), expiresAt: now.Add(c.ttl)}
	c.pending[articleID] = p
	return p
}

// consume reports whether token is the live token for articleID. A matching
// token is spent; an expired one is dropped.
func (c *confirmations) consume(articleID, token string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[articleID]
	if !ok || token == "" || p.token != token {
		return false
	}
	delete(c.pending, articleID)
	return now.Before(p.expiresAt)
}
