package session

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hubgoodfood/freshchat/catalog"
	"github.com/hubgoodfood/freshchat/intent"
)

// trailingParticles strips sentence-final particles and question marks
// before the pure-follow-up equality check ("多少钱呢？" -> "多少钱").
var trailingParticles = regexp.MustCompile(`[呢呀啊吧吗？?！!。]+$`)

// DefaultPureFollowUps are the queries that, on their own, always refer to
// the previously established product.
func DefaultPureFollowUps() []string {
	return []string{"多少钱", "什么价", "价格是", "几多钱", "价格", "售价"}
}

// DefaultReferentialKeywords mark a query as referring back to an earlier
// entity without naming it.
func DefaultReferentialKeywords() []string {
	return []string{"它", "这个", "那个", "这", "那", "刚才", "刚刚"}
}

// Config tunes the resolver.
type Config struct {
	PureFollowUps       []string
	ReferentialKeywords []string
	HistoryLimit        int
}

// DefaultConfig returns the stock follow-up tables and a 20-turn history.
func DefaultConfig() Config {
	return Config{
		PureFollowUps:       DefaultPureFollowUps(),
		ReferentialKeywords: DefaultReferentialKeywords(),
		HistoryLimit:        20,
	}
}

// Resolver owns per-user contexts: it rewrites follow-up queries against
// them and commits turn outcomes back. Contexts for different users never
// contend; turns for the same user serialize on a per-user lock.
type Resolver struct {
	store Store
	cfg   Config

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewResolver wraps a store. A nil store gets an in-memory one.
func NewResolver(store Store, cfg Config) *Resolver {
	if store == nil {
		store = NewMemoryStore()
	}
	if cfg.PureFollowUps == nil {
		cfg.PureFollowUps = DefaultPureFollowUps()
	}
	if cfg.ReferentialKeywords == nil {
		cfg.ReferentialKeywords = DefaultReferentialKeywords()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	return &Resolver{store: store, cfg: cfg, locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the user's context for one read-modify-write turn and
// returns it (created lazily on first contact) plus the release func.
func (r *Resolver) Acquire(userID string) (*Context, func()) {
	lock := r.userLock(userID)
	lock.Lock()

	sctx, ok := r.store.Get(userID)
	if !ok {
		sctx = &Context{UserID: userID}
	}
	return sctx, func() {
		r.store.Put(userID, sctx)
		lock.Unlock()
	}
}

func (r *Resolver) userLock(userID string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	lock, ok := r.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[userID] = lock
	}
	return lock
}

// IsPureFollowUp reports whether text, once trailing particles are
// stripped, is exactly one of the pure follow-up keywords.
func (r *Resolver) IsPureFollowUp(text string) bool {
	stripped := strings.TrimSpace(trailingParticles.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), ""))
	for _, kw := range r.cfg.PureFollowUps {
		if stripped == kw {
			return true
		}
	}
	return false
}

// Rewrite expands an elliptical follow-up using the session context.
// pure reports an eager pure-follow-up rewrite; those are resolved
// immediately by the caller so the generic prefixing below cannot apply a
// second prefix on top.
func (r *Resolver) Rewrite(text string, sctx *Context) (rewritten string, pure bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if sctx == nil || sctx.LastMatched == nil || lower == "" {
		return text, false
	}

	subject := sctx.LastMatched.DisplayName
	if subject == "" {
		subject = sctx.LastMatched.Name
	}
	if subject == "" {
		return text, false
	}

	stripped := strings.TrimSpace(trailingParticles.ReplaceAllString(lower, ""))
	for _, kw := range r.cfg.PureFollowUps {
		if stripped == kw {
			rewritten = subject + " " + lower
			slog.Debug("rewrote pure follow-up", "query", text, "rewritten", rewritten)
			return rewritten, true
		}
	}

	for _, kw := range r.cfg.ReferentialKeywords {
		if strings.Contains(lower, kw) && !strings.Contains(lower, strings.ToLower(subject)) {
			rewritten = subject + " " + lower
			slog.Debug("rewrote referential follow-up", "query", text, "rewritten", rewritten)
			return rewritten, false
		}
	}
	return text, false
}

// Outcome describes what a completed turn actually surfaced.
type Outcome struct {
	Query  string
	Intent intent.Label
	// Matched is the single entry the turn resolved to, nil otherwise.
	Matched *catalog.Entry
	// Mention is the entity the answer surfaced, nil for clarifications
	// and fallbacks.
	Mention *Mention
	// KeepContext preserves the previous matched entry when the turn
	// resolved no entity of its own (greetings, policy questions).
	KeepContext bool
}

// Commit folds a turn outcome into the context. The last-matched entry and
// the last bot mention track independently; a clarification turn updates
// neither.
func (r *Resolver) Commit(sctx *Context, out Outcome) {
	sctx.LastQuery = out.Query

	turn := Turn{Query: out.Query, Intent: out.Intent, At: time.Now()}
	if out.Matched != nil {
		turn.MatchedKey = out.Matched.Key
		sctx.LastMatchedKey = out.Matched.Key
		sctx.LastMatched = out.Matched
		sctx.recordPreference(out.Matched.Category, out.Matched.Key)
	} else if !out.KeepContext {
		sctx.LastMatchedKey = ""
		sctx.LastMatched = nil
	}
	sctx.LastBotMention = out.Mention
	sctx.recordTurn(turn, r.cfg.HistoryLimit)
}

// MentionFor builds a Mention snapshot from a catalog entry.
func MentionFor(e *catalog.Entry) *Mention {
	if e == nil {
		return nil
	}
	return &Mention{
		Key:           e.Key,
		Name:          e.DisplayName,
		Specification: e.Specification,
		Description:   e.Description,
		Price:         e.Price,
	}
}
