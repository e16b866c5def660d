package item

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mediavault/service/internal/config"
	"github.com/mediavault/service/internal/preprocess"
	"github.com/mediavault/service/internal/schema"
	"github.com/mediavault/service/internal/storage"
)

// Service contains the business logic for a user's content shelf. It holds
// no per-request state; all item identity flows through the Owner argument
// and the store keys.
type Service struct {
	store  storage.Store
	cfg    *config.Config
	quota  *QuotaGuard
	logger *logrus.Logger
	log    *logrus.Entry
}

// NewService creates a new item Service.
func NewService(store storage.Store, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		store:  store,
		cfg:    cfg,
		quota:  NewQuotaGuard(store, cfg.ListPageSize, log),
		logger: log,
		log:    log.WithField("component", "item"),
	}
}

// newPipeline builds the per-upload preprocessing pipeline. The plugin list
// is compile-time known; order is priority order.
func (s *Service) newPipeline() *preprocess.Pipeline {
	return preprocess.NewPipeline(
		preprocess.NewImagePlugin(s.cfg.PreviewWidthPx, s.cfg.PreferredMaxWidthPx, s.cfg.ImageEncodeQuality, s.logger),
	)
}

// AddItem admits one upload: quota checks first (no bytes are written when
// any of them fails), then variant generation, then one store write per
// produced rendition. The writes are independent; a crash partway leaves a
// partial item, which catalog reads tolerate.
func (s *Service) AddItem(ctx context.Context, owner Owner, name string, data []byte) error {
	if err := s.quota.CheckUser(ctx, owner, s.cfg.MaxFilesPerUser); err != nil {
		return err
	}
	if err := s.quota.CheckGlobal(ctx, s.cfg.MaxTotalFiles); err != nil {
		return err
	}

	pipeline := s.newPipeline()
	variants := pipeline.Process(data)
	if len(variants) == 0 {
		return fmt.Errorf("processing %q: %w", name, ErrEmptyResult)
	}
	used := pipeline.Used()
	category := used.ContentCategory()

	if err := s.quota.CheckCategory(ctx, owner, CategoryDir(owner, category), s.cfg.CategoryQuota[category]); err != nil {
		return err
	}

	for _, variant := range schema.Variants {
		buf, ok := variants[variant]
		if !ok {
			continue
		}
		finalName := name
		// When the preferred rendition changed the format, store it under
		// the matching extension so name-based downloads work in user
		// agents. Catalog assembly later strips the extension to group the
		// renditions back together.
		if variant == schema.VariantPreferred {
			finalName = preferredName(name, used.PreferredExtension())
		}
		if err := s.save(ctx, owner, category, variant, finalName, buf); err != nil {
			return err
		}
	}
	for variant := range variants {
		if !knownVariant(variant) {
			s.log.Errorf("upload plugin produced unknown presentation variant %q, not stored", variant)
		}
	}
	return nil
}

// GetItem retrieves one stored rendition, optionally base64-encoded.
// Unsupported encodings are rejected before any store call; objects above
// the configured retrieval cap are refused rather than buffered.
func (s *Service) GetItem(ctx context.Context, owner Owner, category schema.Category, variant schema.Variant, name, encoding string) ([]byte, error) {
	if !EncodingAvailable(encoding) {
		return nil, fmt.Errorf("requested encoding %q for item %q: %w", encoding, name, ErrUnsupportedEncoding)
	}

	data, err := s.store.Get(ctx, ObjectKey(owner, category, variant, name), s.cfg.MaxRetrieveBytes)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("read %d bytes for item %q", len(data), name)

	if encoding == EncodingBase64 {
		return []byte(base64.StdEncoding.EncodeToString(data)), nil
	}
	return data, nil
}

// DeleteVariant removes a single stored rendition of an item, reporting
// whether anything was deleted.
func (s *Service) DeleteVariant(ctx context.Context, owner Owner, category schema.Category, variant schema.Variant, name string) (bool, error) {
	key := ObjectKey(owner, category, variant, name)
	deleted, err := s.store.Delete(ctx, key)
	if err != nil {
		return false, err
	}
	if !deleted {
		s.log.Debugf("did not find item at %q", key)
		return false, nil
	}
	s.log.Debugf("deleted item at %q", key)
	return true, nil
}

// save writes one rendition with its identifying metadata.
func (s *Service) save(ctx context.Context, owner Owner, category schema.Category, variant schema.Variant, name string, data []byte) error {
	key := ObjectKey(owner, category, variant, name)
	err := s.store.Put(ctx, key, data, storage.PutOptions{
		ContentCategory: string(category),
		Public:          false,
		DisplayName:     name,
	})
	if err != nil {
		return fmt.Errorf("save item at %q: %w", key, err)
	}
	return nil
}

// preferredName swaps name's extension for ext (appending when name has no
// extension). An empty ext, or a name already carrying it, passes through.
func preferredName(name, ext string) string {
	if ext == "" || strings.HasSuffix(name, ext) {
		return name
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx] + ext
	}
	return name + ext
}

func knownVariant(v schema.Variant) bool {
	for _, known := range schema.Variants {
		if v == known {
			return true
		}
	}
	return false
}

// IsNotFound returns true when the error indicates a missing object.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
