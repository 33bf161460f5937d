package files

import (
	"time"

	"github.com/filekit/filekit/pkg/imaging"
)

// Config holds the file service settings.
type Config struct {
	// CompressThreshold is the size above which uploaded images are
	// scheduled for asynchronous re-encoding.
	CompressThreshold int64 `env:"IMAGE_COMPRESS_THRESHOLD" envDefault:"2097152" yaml:"compress_threshold"` // 2 MB
	// CompressQuality is the JPEG quality for compressed variants.
	CompressQuality int `env:"IMAGE_COMPRESS_QUALITY" envDefault:"80" yaml:"compress_quality"`
	// MaxImageWidth / MaxImageHeight bound compressed variants.
	MaxImageWidth  int `env:"IMAGE_MAX_WIDTH" envDefault:"1920" yaml:"max_image_width"`
	MaxImageHeight int `env:"IMAGE_MAX_HEIGHT" envDefault:"1920" yaml:"max_image_height"`

	// RetentionPeriod is how long soft-deleted files survive before the
	// reaper removes their bytes and metadata.
	RetentionPeriod time.Duration `env:"FILE_RETENTION_PERIOD" envDefault:"720h" yaml:"retention_period"` // 30 days
	// SweepInterval paces the permission expiry sweep.
	SweepInterval time.Duration `env:"PERMISSION_SWEEP_INTERVAL" envDefault:"10m" yaml:"sweep_interval"`
	// ReapInterval paces the deleted-file reaper.
	ReapInterval time.Duration `env:"FILE_REAP_INTERVAL" envDefault:"1h" yaml:"reap_interval"`

	// InfoCacheSize / InfoCacheTTL tune the in-process record cache.
	InfoCacheSize int           `env:"FILE_INFO_CACHE_SIZE" envDefault:"1024" yaml:"info_cache_size"`
	InfoCacheTTL  time.Duration `env:"FILE_INFO_CACHE_TTL" envDefault:"5m" yaml:"info_cache_ttl"`

	// ThumbnailSizes override the standard preview sizes; usually loaded
	// from a YAML options file rather than the environment.
	ThumbnailSizes []imaging.Size `env:"-" yaml:"thumbnail_sizes"`
}

func (c Config) thumbnailSizes() []imaging.Size {
	if len(c.ThumbnailSizes) > 0 {
		return c.ThumbnailSizes
	}
	return imaging.DefaultThumbnailSizes
}
