package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// rendererPool hands out glamour renderers, one sync.Pool per option set.
// A TermRenderer must not be used by two Render calls at once.
type rendererPool struct {
	pools sync.Map // Options -> *sync.Pool
}

var globalPool = &rendererPool{}

// cacheKey normalises opts into the key of its pool
func cacheKey(opts Options) Options {
	if opts.Style == "" {
		opts.Style = StyleDark
	}
	return opts
}

func (p *rendererPool) pool(opts Options) *sync.Pool {
	key := cacheKey(opts)
	if v, ok := p.pools.Load(key); ok {
		return v.(*sync.Pool)
	}
	v, _ := p.pools.LoadOrStore(key, &sync.Pool{})
	return v.(*sync.Pool)
}

// get takes a renderer for opts, building one when the pool is empty
func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	if r, ok := p.pool(opts).Get().(*glamour.TermRenderer); ok && r != nil {
		return r, nil
	}
	return createRenderer(cacheKey(opts))
}

func (p *rendererPool) put(opts Options, r *glamour.TermRenderer) {
	if r == nil {
		return
	}
	p.pool(opts).Put(r)
}

// createRenderer builds a renderer; Style may be a built-in name or a JSON style file
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every pool.
func ClearCache() {
	globalPool.pools.Range(func(k, _ any) bool {
		globalPool.pools.Delete(k)
		return true
	})
}

// CacheSize returns the number of option sets with a pool.
func CacheSize() int {
	n := 0
	globalPool.pools.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
