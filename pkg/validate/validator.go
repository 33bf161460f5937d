package validate

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/filekit/filekit/pkg/ratelimit"
)

// Config holds the upload validation rules.
type Config struct {
	MaxSize           int64    `env:"UPLOAD_MAX_SIZE" envDefault:"52428800"` // 50 MB
	AllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS" envDefault:"jpg,jpeg,png,gif,bmp,webp,pdf,txt,zip,doc,docx,xls,xlsx"`
	AllowedTypes      []string `env:"UPLOAD_ALLOWED_TYPES" envDefault:"image/jpeg,image/png,image/gif,image/bmp,image/webp,application/pdf,text/plain,application/zip,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/vnd.ms-excel,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"`
}

// illegalNameChars are rejected anywhere in an uploaded filename. Path
// separators are included, so traversal never gets past this check.
const illegalNameChars = `<>:"|?*/\`

const maxNameLength = 255

// Validator runs the pre-write upload checks. All checks are pure except
// the rate-limit counter, which records the attempt.
type Validator struct {
	config  Config
	limiter *ratelimit.Limiter
	exts    map[string]struct{}
	types   map[string]struct{}
}

// New creates a validator. A nil limiter disables rate limiting.
func New(config Config, limiter *ratelimit.Limiter) (*Validator, error) {
	if config.MaxSize <= 0 {
		return nil, fmt.Errorf("%w: max size must be positive", ErrInvalidConfig)
	}
	if len(config.AllowedExtensions) == 0 || len(config.AllowedTypes) == 0 {
		return nil, fmt.Errorf("%w: empty allow-list", ErrInvalidConfig)
	}

	v := &Validator{
		config:  config,
		limiter: limiter,
		exts:    make(map[string]struct{}, len(config.AllowedExtensions)),
		types:   make(map[string]struct{}, len(config.AllowedTypes)),
	}
	for _, ext := range config.AllowedExtensions {
		v.exts[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))] = struct{}{}
	}
	for _, ct := range config.AllowedTypes {
		v.types[strings.ToLower(strings.TrimSpace(ct))] = struct{}{}
	}
	return v, nil
}

// Validate runs every upload check in order and fails on the first
// violation: non-empty content, filename legality, extension and declared
// MIME allow-lists, magic-number match, size ceiling, and the per-owner
// rate limit. Nothing is written anywhere; the only side effect is the
// rate-limit counter recording this attempt.
func (v *Validator) Validate(ctx context.Context, content []byte, originalName, contentType, ownerID string) error {
	if len(content) == 0 {
		return fmt.Errorf("%w: empty content", ErrInvalidFile)
	}

	if err := checkName(originalName); err != nil {
		return err
	}

	ext := extension(originalName)
	if _, ok := v.exts[ext]; !ok {
		return fmt.Errorf("%w: extension %q", ErrUnsupportedType, ext)
	}

	declared := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if _, ok := v.types[declared]; !ok {
		return fmt.Errorf("%w: content type %q", ErrUnsupportedType, contentType)
	}

	if !matchesSignature(ext, content) {
		return fmt.Errorf("%w: content signature does not match %q", ErrUnsupportedType, ext)
	}

	if int64(len(content)) > v.config.MaxSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, len(content), v.config.MaxSize)
	}

	if v.limiter != nil {
		result, err := v.limiter.Allow(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("rate limit check: %w", err)
		}
		if !result.Allowed() {
			return fmt.Errorf("%w: retry after %s", ErrRateLimited, result.RetryAfter())
		}
	}

	return nil
}

// checkName rejects illegal filenames outright; acceptance never rewrites a
// name, sanitizing is reserved for display (see DisplayName).
func checkName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: empty or reserved filename", ErrInvalidFile)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: filename exceeds %d characters", ErrInvalidFile, maxNameLength)
	}
	if strings.ContainsAny(name, illegalNameChars) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: filename contains illegal characters", ErrInvalidFile)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: filename contains path traversal", ErrInvalidFile)
	}
	return nil
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// DisplayName sanitizes a filename for presentation: the base name only,
// Unicode NFC-normalized, trimmed of surrounding whitespace. It is never
// used on the acceptance path.
func DisplayName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = norm.NFC.String(name)
	return strings.TrimSpace(name)
}
