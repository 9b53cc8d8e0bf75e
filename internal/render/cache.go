package render

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/glamour"
)

// replyRenderers lends glamour renderers out per option set. A
// TermRenderer keeps internal buffers between calls, so one instance is
// never used by two Render calls at once: each caller borrows its own and
// hands it back when done.
type replyRenderers struct {
	mu    sync.Mutex
	pools map[Options]*sync.Pool

	// built counts renderers constructed since the last reset.
	built atomic.Int64
}

var renderers = newReplyRenderers()

func newReplyRenderers() *replyRenderers {
	return &replyRenderers{pools: make(map[Options]*sync.Pool)}
}

// normalized maps options that render identically to the same value, so
// they share a pool. Unknown styles fall back to the default style and a
// non-positive width to the default width.
func (o Options) normalized() Options {
	o.Style = resolveStyle(o.Style)
	if o.Width <= 0 {
		o.Width = DefaultOptions().Width
	}
	return o
}

// poolFor returns the pool for an already normalized key, creating it on
// first use. The pool has no New func: an empty pool means build.
func (r *replyRenderers) poolFor(key Options) *sync.Pool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.pools[key]
	if !ok {
		pool = &sync.Pool{}
		r.pools[key] = pool
	}
	return pool
}

// borrow hands out a renderer for opts together with the func that
// returns it. The release func must be called exactly once.
func (r *replyRenderers) borrow(opts Options) (*glamour.TermRenderer, func(), error) {
	key := opts.normalized()
	pool := r.poolFor(key)

	tr, ok := pool.Get().(*glamour.TermRenderer)
	if !ok {
		var err error
		tr, err = build(key)
		if err != nil {
			return nil, nil, err
		}
		r.built.Add(1)
	}
	return tr, func() { pool.Put(tr) }, nil
}

// reset forgets every pool; pooled renderers are left to the GC.
func (r *replyRenderers) reset() {
	r.mu.Lock()
	r.pools = make(map[Options]*sync.Pool)
	r.mu.Unlock()
	r.built.Store(0)
}

// size returns the number of distinct option sets seen.
func (r *replyRenderers) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}

// build constructs a renderer for a normalized key.
func build(key Options) (*glamour.TermRenderer, error) {
	termOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(key.Style),
		glamour.WithWordWrap(key.Width),
		glamour.WithTableWrap(key.TableWrap),
		glamour.WithInlineTableLinks(key.InlineTableLinks),
	}
	if key.EnableEmoji {
		termOpts = append(termOpts, glamour.WithEmoji())
	}
	if key.PreserveNewLines {
		termOpts = append(termOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(termOpts...)
}
