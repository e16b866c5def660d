package item

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mediavault/service/internal/storage"
)

// QuotaGuard enforces object-count ceilings by paging through store
// listings. This is an approximation: cost scales with listing size, and a
// local running-counter cache is the intended evolution. Until then the
// short-circuit below keeps the worst case bounded: an over-quota prefix is
// detected after at most ceil(limit/pageSize) pages.
type QuotaGuard struct {
	store    storage.Store
	pageSize int
	log      *logrus.Entry
}

// NewQuotaGuard returns a QuotaGuard that lists pageSize keys per round trip.
func NewQuotaGuard(store storage.Store, pageSize int, log *logrus.Logger) *QuotaGuard {
	return &QuotaGuard{
		store:    store,
		pageSize: pageSize,
		log:      log.WithField("component", "quota"),
	}
}

// CheckUser fails with ErrQuotaExceeded when the user's root already holds
// at least limit objects.
func (q *QuotaGuard) CheckUser(ctx context.Context, owner Owner, limit int) error {
	exceeded, err := q.prefixAtLeast(ctx, UserRoot(owner), limit)
	if err != nil {
		return err
	}
	if exceeded {
		q.log.WithField("user", owner.Name).Warnf("user over quota of %d items", limit)
		return fmt.Errorf("too many items stored for user, max %d: %w", limit, ErrQuotaExceeded)
	}
	return nil
}

// CheckCategory fails with ErrQuotaExceeded when one category of the user's
// items already holds at least limit objects. A limit of zero disables the
// check.
func (q *QuotaGuard) CheckCategory(ctx context.Context, owner Owner, dir string, limit int) error {
	if limit <= 0 {
		return nil
	}
	exceeded, err := q.prefixAtLeast(ctx, dir, limit)
	if err != nil {
		return err
	}
	if exceeded {
		q.log.WithField("user", owner.Name).Warnf("category %q over quota of %d items", dir, limit)
		return fmt.Errorf("too many items stored in category, max %d: %w", limit, ErrQuotaExceeded)
	}
	return nil
}

// CheckGlobal fails with ErrQuotaExceeded when the whole store already holds
// at least limit objects.
func (q *QuotaGuard) CheckGlobal(ctx context.Context, limit int) error {
	exceeded, err := q.prefixAtLeast(ctx, rootPrefix+"/", limit)
	if err != nil {
		return err
	}
	if exceeded {
		q.log.Warnf("store over global quota of %d items", limit)
		return fmt.Errorf("too many items stored system-wide, max %d: %w", limit, ErrQuotaExceeded)
	}
	return nil
}

// prefixAtLeast reports whether at least limit objects live under prefix,
// stopping the moment the running count crosses the threshold instead of
// enumerating the full listing.
func (q *QuotaGuard) prefixAtLeast(ctx context.Context, prefix string, limit int) (bool, error) {
	total := 0
	token := ""
	pages := 0
	for {
		page, err := q.store.List(ctx, prefix, token, q.pageSize)
		if err != nil {
			return false, fmt.Errorf("quota listing under %q: %w", prefix, err)
		}
		pages++
		total += len(page.Objects)
		if total >= limit {
			q.log.Debugf("prefix %q reached %d objects after %d listings", prefix, total, pages)
			return true, nil
		}
		if !page.Truncated {
			return false, nil
		}
		token = page.NextToken
	}
}
