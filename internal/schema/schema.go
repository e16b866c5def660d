// Package schema defines the content categories and presentation variants
// that shape every store key. These values double as path segments, so they
// stay lower-case and directory-friendly rather than RFC media types.
package schema

import "fmt"

// Category is the coarse classification of an upload, decided by whichever
// preprocessor plugin claims the bytes.
type Category string

const (
	CategoryImage   Category = "image"
	CategoryUnknown Category = "unknown"
)

// Categories lists every known category, in listing order.
var Categories = []Category{CategoryImage, CategoryUnknown}

// ParseCategory validates a category string taken from a request path or a
// decoded store key.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryImage:
		return CategoryImage, nil
	case CategoryUnknown:
		return CategoryUnknown, nil
	}
	return "", fmt.Errorf("invalid content category: %q", s)
}

// Variant names the presentation purpose of one stored rendition of an item:
// a small preview, the untouched original, or the size-capped rendition we
// hand out by default.
type Variant string

const (
	VariantPreview   Variant = "preview"
	VariantOriginal  Variant = "original"
	VariantPreferred Variant = "preferred"
)

// Variants lists every variant in merge order. Catalog assembly depends on
// this order: preview first, then original (which seeds a missing preferred),
// then preferred (which overwrites the seed).
var Variants = []Variant{VariantPreview, VariantOriginal, VariantPreferred}

// ParseVariant validates a variant string taken from a request path or a
// decoded store key.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantPreview:
		return VariantPreview, nil
	case VariantOriginal:
		return VariantOriginal, nil
	case VariantPreferred:
		return VariantPreferred, nil
	}
	return "", fmt.Errorf("invalid presentation variant: %q", s)
}
