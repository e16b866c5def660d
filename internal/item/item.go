// Package item implements the per-user content shelf: uploads are stored in
// an object store under metadata-bearing keys, fanned out into presentation
// variants, and reassembled into logical items at read time.
package item

import "github.com/mediavault/service/internal/schema"

// AttrAltText is the attribute holding preview alt text.
const AttrAltText = "altText"

// AttrDisplayName is the attribute holding the item's human-facing name.
const AttrDisplayName = "display_name"

// Item is one user-facing grouping of stored variants sharing a base name.
// Items have no persisted record of their own: every Item is synthesized
// from a store listing and lives only for the duration of one catalog read.
type Item struct {
	Type      schema.Category   `json:"type"`
	Preview   *Location         `json:"preview_location,omitempty"`
	Original  *Location         `json:"original_location,omitempty"`
	Preferred *Location         `json:"preferred_location,omitempty"`
	Attr      map[string]string `json:"attr"`
}

// NewItem returns an empty Item of the given category.
func NewItem(category schema.Category) *Item {
	return &Item{
		Type: category,
		Attr: make(map[string]string),
	}
}

// SetLocation records one stored rendition. An original rendition seeds the
// preferred slot when nothing better has shown up yet, so every stored item
// has a usable preferred location; a true preferred rendition always
// overwrites that seed. Callers must apply variants in schema.Variants order
// for the overwrite to win regardless of listing order.
func (it *Item) SetLocation(variant schema.Variant, loc Location) {
	switch variant {
	case schema.VariantPreview:
		it.Preview = &loc
	case schema.VariantOriginal:
		it.Original = &loc
		if it.Preferred == nil {
			it.Preferred = &loc
		}
	case schema.VariantPreferred:
		it.Preferred = &loc
	}
}

// AddAttr sets a free-form annotation on the item.
func (it *Item) AddAttr(key, value string) {
	it.Attr[key] = value
}

// GetAttr returns the annotation for key, or the empty string.
func (it *Item) GetAttr(key string) string {
	return it.Attr[key]
}
