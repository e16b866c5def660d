package item

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mediavault/service/internal/schema"
)

// Catalog reads reconstruct logical items purely from the key listing: there
// is no metadata store yet, so the store paths are the metadata. Once a true
// metadata store exists this file can be greatly simplified.

// ListItems lists everything the user has stored and folds the flat key set
// into logical items, grouping stored renditions by their extension-stripped
// base name. Two reads with no mutation in between yield the same item set.
func (s *Service) ListItems(ctx context.Context, owner Owner) ([]*Item, error) {
	locations, err := s.itemLocations(ctx, owner)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*Item)
	// Variant order matters here: original seeds the preferred slot, and a
	// real preferred rendition must be applied after it to win.
	for _, category := range schema.Categories {
		byVariant := locations[category]
		for _, variant := range schema.Variants {
			for _, loc := range byVariant[variant] {
				key := groupKey(loc.Name)
				s.log.Debugf("location %q grouped under %q for user %q", loc.Path, key, owner.Name)
				it, ok := groups[key]
				if !ok {
					it = NewItem(category)
					groups[key] = it
				}
				it.SetLocation(variant, loc)
				if variant == schema.VariantPreview {
					it.AddAttr(AttrAltText, "Preview of "+key)
				}
			}
		}
	}

	items := make([]*Item, 0, len(groups))
	for key, it := range groups {
		// The group key is the display name in all cases (original,
		// preview, preferred without a substituted extension) except when
		// the preferred rendition changed the extension, in which case it is the
		// shared base name.
		it.AddAttr(AttrDisplayName, key)
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].GetAttr(AttrDisplayName) < items[j].GetAttr(AttrDisplayName)
	})
	return items, nil
}

// itemLocations walks every (category, variant) prefix of the user's root
// and decodes each listed key. Undecodable keys and directory-marker entries
// (some stores list the queried prefix itself as an object) are skipped with
// a diagnostic log, never surfaced as failures.
func (s *Service) itemLocations(ctx context.Context, owner Owner) (map[schema.Category]map[schema.Variant][]Location, error) {
	locations := make(map[schema.Category]map[schema.Variant][]Location)

	for _, category := range schema.Categories {
		for _, variant := range schema.Variants {
			prefix := VariantDir(owner, category, variant)
			curDir := ExternalDir(owner, category, variant)

			token := ""
			for {
				page, err := s.store.List(ctx, prefix, token, s.cfg.ListPageSize)
				if err != nil {
					return nil, fmt.Errorf("list items under %q: %w", prefix, err)
				}
				for _, obj := range page.Objects {
					decoded, ok := Decode(obj.Key)
					if !ok {
						s.log.Debugf("skipping undecodable key %q in listing", obj.Key)
						continue
					}
					if strings.HasSuffix(curDir, decoded.Location.Name) {
						s.log.Debugf("skipping %q: looks like a group (folder), not an object", decoded.Location.Path)
						continue
					}
					if locations[decoded.Category] == nil {
						locations[decoded.Category] = make(map[schema.Variant][]Location)
					}
					locations[decoded.Category][decoded.Variant] = append(
						locations[decoded.Category][decoded.Variant], decoded.Location)
				}
				if !page.Truncated {
					break
				}
				token = page.NextToken
			}
		}
	}
	return locations, nil
}

// groupKey strips the final extension from an item name to recover the base
// name shared by all of the item's renditions. Names without an extension
// (and dot-files) group under their full name.
func groupKey(name string) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}
