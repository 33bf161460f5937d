package validate_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/ratelimit"
	"github.com/filekit/filekit/pkg/validate"
)

var jpegContent = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x01}, 64)...)

func newValidator(t *testing.T, limiter *ratelimit.Limiter) *validate.Validator {
	t.Helper()

	v, err := validate.New(validate.Config{
		MaxSize:           1024,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "txt"},
		AllowedTypes:      []string{"image/jpeg", "image/png", "text/plain"},
	}, limiter)
	require.NoError(t, err)
	return v
}

func TestValidator_AcceptsValidUpload(t *testing.T) {
	t.Parallel()

	v := newValidator(t, nil)

	err := v.Validate(context.Background(), jpegContent, "cat.jpg", "image/jpeg", "alice")
	assert.NoError(t, err)
}

func TestValidator_RejectsEmptyContent(t *testing.T) {
	t.Parallel()

	v := newValidator(t, nil)

	err := v.Validate(context.Background(), nil, "cat.jpg", "image/jpeg", "alice")
	assert.ErrorIs(t, err, validate.ErrInvalidFile)
}

func TestValidator_RejectsIllegalNames(t *testing.T) {
	t.Parallel()

	v := newValidator(t, nil)
	ctx := context.Background()

	for _, name := range []string{
		"",
		"../../etc/passwd.txt",
		"a/b.jpg",
		`a\b.jpg`,
		"con<script>.jpg",
		"pipe|name.jpg",
		"what?.jpg",
		"drive:c.jpg",
		strings.Repeat("x", 300) + ".jpg",
	} {
		err := v.Validate(ctx, jpegContent, name, "image/jpeg", "alice")
		assert.ErrorIs(t, err, validate.ErrInvalidFile, "name %q", name)
	}
}

func TestValidator_RejectsDisallowedExtension(t *testing.T) {
	t.Parallel()

	v := newValidator(t, nil)

	err := v.Validate(context.Background(), jpegContent, "run.exe", "image/jpeg", "alice")
	assert.ErrorIs(t, err, validate.ErrUnsupportedType)
}

func TestValidator_RejectsDisallowedMIME(t *testing.T) {
	t.Parallel()

	v := newValidator(t, nil)

	err := v.Validate(context.Background(), jpegContent, "cat.jpg", "application/octet-stream", "alice")
	assert.ErrorIs(t, err, validate.ErrUnsupportedType)
}

func TestValidator_StripsMIMEParameters(t *testing.T) {
	t.Parallel()

	v := newValidator(t, nil)

	content := []byte("hello")
	err := v.Validate(context.Background(), content, "note.txt", "text/plain; charset=utf-8", "alice")
	assert.NoError(t, err)
}

func TestValidator_RejectsForgedSignature(t *testing.T) {
	t.Parallel()

	v := newValidator(t, nil)

	// An executable renamed to .jpg: wrong magic number.
	elf := append([]byte{0x7F, 'E', 'L', 'F'}, bytes.Repeat([]byte{0}, 32)...)
	err := v.Validate(context.Background(), elf, "totally-a-photo.jpg", "image/jpeg", "alice")
	assert.ErrorIs(t, err, validate.ErrUnsupportedType)

	// PNG bytes behind a .jpg name fail too.
	png := append([]byte{0x89, 0x50, 0x4E, 0x47}, bytes.Repeat([]byte{0}, 32)...)
	err = v.Validate(context.Background(), png, "photo.jpg", "image/jpeg", "alice")
	assert.ErrorIs(t, err, validate.ErrUnsupportedType)
}

func TestValidator_UncheckableExtensionPasses(t *testing.T) {
	t.Parallel()

	v := newValidator(t, nil)

	// txt has no magic number; the signature stage does not apply.
	err := v.Validate(context.Background(), []byte("plain text"), "note.txt", "text/plain", "alice")
	assert.NoError(t, err)
}

func TestValidator_RejectsOversize(t *testing.T) {
	t.Parallel()

	v := newValidator(t, nil)

	big := append([]byte{0xFF, 0xD8, 0xFF}, bytes.Repeat([]byte{0x01}, 2048)...)
	err := v.Validate(context.Background(), big, "cat.jpg", "image/jpeg", "alice")
	assert.ErrorIs(t, err, validate.ErrTooLarge)
}

func TestValidator_RateLimited(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	limiter, err := ratelimit.New(store, ratelimit.Config{Limit: 3, Window: time.Minute})
	require.NoError(t, err)

	v := newValidator(t, limiter)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, v.Validate(ctx, jpegContent, "cat.jpg", "image/jpeg", "alice"))
	}

	err = v.Validate(ctx, jpegContent, "cat.jpg", "image/jpeg", "alice")
	assert.ErrorIs(t, err, validate.ErrRateLimited)

	// Other users have their own window.
	assert.NoError(t, v.Validate(ctx, jpegContent, "cat.jpg", "image/jpeg", "bob"))
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := validate.New(validate.Config{MaxSize: 0, AllowedExtensions: []string{"jpg"}, AllowedTypes: []string{"image/jpeg"}}, nil)
	assert.ErrorIs(t, err, validate.ErrInvalidConfig)

	_, err = validate.New(validate.Config{MaxSize: 1, AllowedTypes: []string{"image/jpeg"}}, nil)
	assert.ErrorIs(t, err, validate.ErrInvalidConfig)
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "report.pdf", validate.DisplayName("  report.pdf "))
	assert.Equal(t, "passwd", validate.DisplayName("../../etc/passwd"))
	assert.Equal(t, "b.jpg", validate.DisplayName(`C:\photos\b.jpg`))

	// NFD input normalizes to NFC.
	assert.Equal(t, "café.txt", validate.DisplayName("cafe\u0301.txt"))
}
