package item

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/service/internal/storage"
)

// countingStore wraps a Store and counts List round trips.
type countingStore struct {
	storage.Store
	listCalls int
}

func (c *countingStore) List(ctx context.Context, prefix, token string, pageSize int) (storage.Page, error) {
	c.listCalls++
	return c.Store.List(ctx, prefix, token, pageSize)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedObjects(t *testing.T, store storage.Store, owner Owner, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		key := ObjectKey(owner, "image", "original", fmt.Sprintf("file%03d.jpg", i))
		require.NoError(t, store.Put(context.Background(), key, []byte("x"), storage.PutOptions{}))
	}
}

func TestCheckUserUnderQuota(t *testing.T) {
	owner := Owner{Name: "alice", ID: "1"}
	store := storage.NewMemoryStore()
	seedObjects(t, store, owner, 10)

	guard := NewQuotaGuard(store, 3, testLogger())
	assert.NoError(t, guard.CheckUser(context.Background(), owner, 100))
}

func TestCheckUserExceeded(t *testing.T) {
	owner := Owner{Name: "alice", ID: "1"}
	store := storage.NewMemoryStore()
	seedObjects(t, store, owner, 10)

	guard := NewQuotaGuard(store, 3, testLogger())
	err := guard.CheckUser(context.Background(), owner, 5)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestCheckUserShortCircuitsPaging(t *testing.T) {
	owner := Owner{Name: "alice", ID: "1"}
	mem := storage.NewMemoryStore()
	seedObjects(t, mem, owner, 50)
	counting := &countingStore{Store: mem}

	pageSize, limit := 5, 12
	guard := NewQuotaGuard(counting, pageSize, testLogger())
	err := guard.CheckUser(context.Background(), owner, limit)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// ceil(12/5) = 3 pages suffice to cross the threshold; the remaining
	// 50 objects must not be enumerated.
	maxPages := (limit + pageSize - 1) / pageSize
	assert.LessOrEqual(t, counting.listCalls, maxPages)
}

func TestCheckUserIgnoresOtherUsers(t *testing.T) {
	alice := Owner{Name: "alice", ID: "1"}
	bob := Owner{Name: "bob", ID: "2"}
	store := storage.NewMemoryStore()
	seedObjects(t, store, bob, 20)

	guard := NewQuotaGuard(store, 10, testLogger())
	assert.NoError(t, guard.CheckUser(context.Background(), alice, 5))
}

func TestCheckGlobalCountsEveryone(t *testing.T) {
	store := storage.NewMemoryStore()
	seedObjects(t, store, Owner{Name: "alice", ID: "1"}, 3)
	seedObjects(t, store, Owner{Name: "bob", ID: "2"}, 3)

	guard := NewQuotaGuard(store, 10, testLogger())
	assert.ErrorIs(t, guard.CheckGlobal(context.Background(), 6), ErrQuotaExceeded)
	assert.NoError(t, guard.CheckGlobal(context.Background(), 7))
}

func TestCheckCategoryZeroLimitDisabled(t *testing.T) {
	owner := Owner{Name: "alice", ID: "1"}
	store := storage.NewMemoryStore()
	seedObjects(t, store, owner, 5)

	guard := NewQuotaGuard(store, 10, testLogger())
	assert.NoError(t, guard.CheckCategory(context.Background(), owner, CategoryDir(owner, "image"), 0))
	assert.ErrorIs(t, guard.CheckCategory(context.Background(), owner, CategoryDir(owner, "image"), 5), ErrQuotaExceeded)
}
