// Package preprocess turns one uploaded buffer into the set of renditions we
// store for it. An upload may have:
//
//   - a preview, a transformation of the contents shown in-line in listings
//     instead of the original;
//   - a "preferred" transformation, returned by default unless the caller
//     specifically wants the original;
//   - the original contents.
//
// The original is always kept, and when no preferred transformation applies
// the original serves as the preferred content. A preview may be missing.
//
// Plugins are tried in priority order; the first to claim the buffer
// processes it exclusively. The same idea could apply to long text, html,
// markdown, video, and so on; today the image plugin is the only real one.
package preprocess

import (
	"github.com/mediavault/service/internal/schema"
)

// Plugin inspects raw upload bytes and, when it claims them, produces the
// renditions to store.
type Plugin interface {
	// CanProcess reports whether this plugin handles the buffer. It must be
	// cheap and side-effect-free; it is called on every upload.
	CanProcess(data []byte) bool

	// Process returns the renditions to store, keyed by variant. The
	// original bytes are always included unchanged. Process must not fail
	// the upload over a derived rendition it could not build.
	Process(data []byte) map[schema.Variant][]byte

	// PreferredExtension names the file extension matching the preferred
	// rendition's format, or "" when the preferred content keeps the
	// original format.
	PreferredExtension() string

	// ContentCategory is the item-schema category this plugin owns.
	ContentCategory() schema.Category
}

// Pipeline dispatches an upload to the first plugin that claims it. It is
// also the fallback: when no plugin claims the buffer, the pipeline itself
// "processes" it by passing the original through untouched. A Pipeline holds
// per-upload state and is built fresh for each call.
type Pipeline struct {
	plugins []Plugin
	used    Plugin
}

// NewPipeline returns a Pipeline consulting plugins in the given order.
func NewPipeline(plugins ...Plugin) *Pipeline {
	return &Pipeline{plugins: plugins}
}

// Used returns the plugin that claimed the last processed upload, or the
// pipeline itself when none did. Nil until Process has run.
func (p *Pipeline) Used() Plugin {
	return p.used
}

// CanProcess always claims the buffer; the pipeline is the fallback plugin.
func (p *Pipeline) CanProcess([]byte) bool {
	return true
}

// Process hands the buffer to the first claiming plugin, or passes the
// original through when no plugin claims it.
func (p *Pipeline) Process(data []byte) map[schema.Variant][]byte {
	for _, plugin := range p.plugins {
		if plugin.CanProcess(data) {
			p.used = plugin
			return plugin.Process(data)
		}
	}
	p.used = p
	return map[schema.Variant][]byte{schema.VariantOriginal: data}
}

// PreferredExtension is empty for the pass-through fallback.
func (p *Pipeline) PreferredExtension() string {
	return ""
}

// ContentCategory of an unclaimed upload is unknown.
func (p *Pipeline) ContentCategory() schema.Category {
	return schema.CategoryUnknown
}
