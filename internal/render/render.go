// Package render provides markdown rendering for terminal output.
package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Options configures the markdown renderer behavior.
type Options struct {
	// Width defines the maximum output width (default: 80)
	Width int

	// Style defines the theme: "dark", "light", or a glamour style name
	Style string

	// EnableEmoji converts :emoji: to unicode characters
	EnableEmoji bool

	// PreserveNewLines preserves original line breaks
	PreserveNewLines bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// glamour.TermRenderer is not safe for concurrent Render calls, so
// renderers are pooled per option set instead of shared.
var (
	poolMu sync.RWMutex
	pools  = make(map[string]*sync.Pool)
)

func cacheKey(opts Options) string {
	return fmt.Sprintf("%s:%d:%t:%t", opts.Style, opts.Width, opts.EnableEmoji, opts.PreserveNewLines)
}

func getPool(opts Options) *sync.Pool {
	key := cacheKey(opts)

	poolMu.RLock()
	if pool, ok := pools[key]; ok {
		poolMu.RUnlock()
		return pool
	}
	poolMu.RUnlock()

	poolMu.Lock()
	defer poolMu.Unlock()
	if pool, ok := pools[key]; ok {
		return pool
	}

	pool := &sync.Pool{
		New: func() interface{} {
			renderer, err := createRenderer(opts)
			if err != nil {
				return nil
			}
			return renderer
		},
	}
	pools[key] = pool
	return pool
}

func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	glamourOpts := []glamour.TermRendererOption{
		glamour.WithWordWrap(opts.Width),
	}

	switch opts.Style {
	case "", "dark":
		glamourOpts = append(glamourOpts, glamour.WithStandardStyle("dark"))
	case "light":
		glamourOpts = append(glamourOpts, glamour.WithStandardStyle("light"))
	default:
		glamourOpts = append(glamourOpts, glamour.WithStandardStyle(opts.Style))
	}

	if opts.EnableEmoji {
		glamourOpts = append(glamourOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		glamourOpts = append(glamourOpts, glamour.WithPreservedNewLines())
	}

	return glamour.NewTermRenderer(glamourOpts...)
}

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	pool := getPool(opts)
	renderer, _ := pool.Get().(*glamour.TermRenderer)
	if renderer == nil {
		r, err := createRenderer(opts)
		if err != nil {
			return "", err
		}
		renderer = r
	}
	defer pool.Put(renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth is a convenience function for rendering with a
// specific width and default options.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}
