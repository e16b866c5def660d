package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/service/internal/schema"
)

func TestObjectKeyShape(t *testing.T) {
	owner := Owner{Name: "alice", ID: "42"}
	key := ObjectKey(owner, schema.CategoryImage, schema.VariantPreview, "cat.jpg")
	assert.Equal(t, "root/alice/42/image/preview/cat.jpg", key)
	assert.Equal(t, "root/alice/42/", UserRoot(owner))
	assert.Equal(t, "root/alice/42/image/", CategoryDir(owner, schema.CategoryImage))
}

func TestDecodeRoundTrip(t *testing.T) {
	owner := Owner{Name: "alice", ID: "42"}
	for _, category := range schema.Categories {
		for _, variant := range schema.Variants {
			for _, name := range []string{"cat.jpg", "archive.tar.gz", "noext", ".hidden"} {
				key := ObjectKey(owner, category, variant, name)
				decoded, ok := Decode(key)
				require.True(t, ok, "key %q should decode", key)
				assert.Equal(t, category, decoded.Category)
				assert.Equal(t, variant, decoded.Variant)
				assert.Equal(t, name, decoded.Location.Name)
				assert.Equal(t, "/alice/42/"+string(category)+"/"+string(variant)+"/"+name, decoded.Location.Path)
			}
		}
	}
}

func TestDecodeLeadingSlash(t *testing.T) {
	decoded, ok := Decode("/root/alice/42/image/original/cat.jpg")
	require.True(t, ok)
	assert.Equal(t, "cat.jpg", decoded.Location.Name)
	assert.Equal(t, schema.CategoryImage, decoded.Category)
}

func TestDecodeRejectsPrefixes(t *testing.T) {
	// Directory-like prefixes and underspecified keys are not objects.
	for _, key := range []string{
		"",
		"root/alice",
		"root/alice/42",
		"root/alice/42/image",
		"root/alice/42/image/preview",
		"root/alice/42/image/preview/",
		"root//42//",
	} {
		_, ok := Decode(key)
		assert.False(t, ok, "key %q should not decode", key)
	}
}

func TestDecodeRejectsUnknownSegments(t *testing.T) {
	_, ok := Decode("root/alice/42/video/preview/clip.mp4")
	assert.False(t, ok, "unknown category must be rejected")

	_, ok = Decode("root/alice/42/image/thumbnail/cat.jpg")
	assert.False(t, ok, "unknown variant must be rejected")
}

func TestDecodeKeepsOnlyLeadingRootMarker(t *testing.T) {
	// A user literally named "root" further down the path must survive.
	decoded, ok := Decode("root/root/42/image/original/cat.jpg")
	require.True(t, ok)
	assert.Equal(t, "/root/42/image/original/cat.jpg", decoded.Location.Path)
}
