package blob_test

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/blob"
)

func TestUniqueName(t *testing.T) {
	t.Parallel()

	t.Run("preserves extension lowercased", func(t *testing.T) {
		t.Parallel()

		name := blob.UniqueName("Vacation Photo.JPG")
		assert.True(t, strings.HasSuffix(name, ".jpg"), "got %q", name)

		base := strings.TrimSuffix(name, ".jpg")
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), base)
	})

	t.Run("no extension", func(t *testing.T) {
		t.Parallel()

		name := blob.UniqueName("README")
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), name)
	})

	t.Run("unique across calls", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]bool)
		for range 100 {
			name := blob.UniqueName("a.png")
			require.False(t, seen[name])
			seen[name] = true
		}
	})
}

func TestDatePath(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.March, 7, 15, 4, 5, 0, time.UTC)
	got := blob.DatePath(now, "abc123.jpg")
	assert.Equal(t, filepath.ToSlash("2025/03/07/abc123.jpg"), got)
}
