// Package session tracks per-user conversational state and rewrites
// elliptical follow-up queries ("多少钱？") into resolvable ones.
package session

import (
	"time"

	"github.com/hubgoodfood/freshchat/catalog"
	"github.com/hubgoodfood/freshchat/intent"
)

// Turn is one completed exchange.
type Turn struct {
	Query      string
	Intent     intent.Label
	MatchedKey string
	At         time.Time
}

// Mention is the entity the assistant most recently surfaced. It is
// tracked separately from the last *matched* entity: a clarification
// prompt, for instance, sets neither.
type Mention struct {
	Key           string
	Name          string
	Specification string
	Description   string
	Price         float64
}

// Preferences accumulates what the user has shown interest in.
type Preferences struct {
	Categories []string
	Products   []string
}

// Context is the per-user conversational state. It is owned by the
// Resolver on behalf of one user id; nothing else mutates it.
type Context struct {
	UserID         string
	LastQuery      string
	LastMatchedKey string
	LastMatched    *catalog.Entry
	LastBotMention *Mention
	History        []Turn
	Preferences    Preferences
}

// Store persists contexts keyed by user id. Implementations own TTL and
// eviction; the resolver only reads and writes whole contexts.
type Store interface {
	Get(userID string) (*Context, bool)
	Put(userID string, sctx *Context)
}

func (c *Context) recordTurn(t Turn, limit int) {
	c.History = append(c.History, t)
	if limit > 0 && len(c.History) > limit {
		c.History = c.History[len(c.History)-limit:]
	}
}

func (c *Context) recordPreference(category, productKey string) {
	if category != "" && !containsString(c.Preferences.Categories, category) {
		c.Preferences.Categories = append(c.Preferences.Categories, category)
	}
	if productKey != "" && !containsString(c.Preferences.Products, productKey) {
		c.Preferences.Products = append(c.Preferences.Products, productKey)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
