package item

import (
	"strings"

	"github.com/mediavault/service/internal/schema"
)

// All identity and grouping information lives in the store key itself:
//
//	root/<user>/<userId>/<category>/<variant>/<name>
//
// There is no metadata index; listings are decoded back into logical
// coordinates by the functions below. Everything that touches the key shape
// stays in this file so the rest of the package only handles structured
// values.

const rootPrefix = "root"

// Owner identifies whose shelf a key belongs to.
type Owner struct {
	Name string
	ID   string
}

// Location is a decoded store coordinate: the external (user-facing) path
// and the bare item name, its last segment. The name is what catalog
// assembly groups variants by.
type Location struct {
	Path string `json:"full_path"`
	Name string `json:"item_name"`
}

// Decoded is the full logical coordinate recovered from one store key.
type Decoded struct {
	Category schema.Category
	Variant  schema.Variant
	Location Location
}

// UserRoot returns the key prefix that holds everything one user has stored.
func UserRoot(owner Owner) string {
	return rootPrefix + "/" + owner.Name + "/" + owner.ID + "/"
}

// CategoryDir returns the key prefix for one category of a user's items.
func CategoryDir(owner Owner, category schema.Category) string {
	return UserRoot(owner) + string(category) + "/"
}

// VariantDir returns the key prefix listed to find every stored rendition of
// one (category, variant) pair.
func VariantDir(owner Owner, category schema.Category, variant schema.Variant) string {
	return CategoryDir(owner, category) + string(variant) + "/"
}

// ObjectKey returns the store key one rendition of an item is written under.
// The name is stored as given; callers sanitize user-controlled names before
// they reach this layer.
func ObjectKey(owner Owner, category schema.Category, variant schema.Variant, name string) string {
	return VariantDir(owner, category, variant) + name
}

// ExternalDir is the external-path form of a variant directory, used to
// recognize directory-marker entries in listings.
func ExternalDir(owner Owner, category schema.Category, variant schema.Variant) string {
	return "/" + owner.Name + "/" + owner.ID + "/" + string(category) + "/" + string(variant)
}

// Decode parses an internal store key back into its logical coordinate.
// The leading root marker is dropped from the external path. Keys with fewer
// than three meaningful segments past the owner denote directory-like
// prefixes, not objects, and yield ok == false; so do keys whose category or
// variant segment is unrecognized. Decode never fails hard: callers skip
// undecodable keys and keep walking the listing.
func Decode(internalKey string) (Decoded, bool) {
	var kept []string
	rootDropped := false
	for _, seg := range strings.Split(internalKey, "/") {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		// Drop the root marker once, at the front; a user who happens to
		// be named "root" keeps their segment.
		if !rootDropped && seg == rootPrefix {
			rootDropped = true
			continue
		}
		kept = append(kept, seg)
	}
	// user, id, then at least category/variant/name
	if len(kept) < 5 {
		return Decoded{}, false
	}

	category, err := schema.ParseCategory(kept[2])
	if err != nil {
		return Decoded{}, false
	}
	variant, err := schema.ParseVariant(kept[3])
	if err != nil {
		return Decoded{}, false
	}

	return Decoded{
		Category: category,
		Variant:  variant,
		Location: Location{
			Path: "/" + strings.Join(kept, "/"),
			Name: kept[len(kept)-1],
		},
	}, true
}
