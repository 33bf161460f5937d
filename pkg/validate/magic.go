package validate

import "bytes"

// signatures maps a file extension to the magic-number prefixes valid for
// it. Extensions without an entry cannot be signature-checked and pass
// that stage.
var signatures = map[string][][]byte{
	"jpg":  {{0xFF, 0xD8, 0xFF}},
	"jpeg": {{0xFF, 0xD8, 0xFF}},
	"png":  {{0x89, 0x50, 0x4E, 0x47}},
	"gif":  {[]byte("GIF")},
	"bmp":  {[]byte("BM")},
	"webp": {[]byte("RIFF")},
}

// matchesSignature reports whether content starts with a magic number valid
// for the extension. Extensions with no known signature always match; a
// renamed executable claiming to be a jpg does not.
func matchesSignature(ext string, content []byte) bool {
	prefixes, ok := signatures[ext]
	if !ok {
		return true
	}

	for _, prefix := range prefixes {
		if bytes.HasPrefix(content, prefix) {
			// WebP is a RIFF container; require the WEBP fourcc too.
			if ext == "webp" {
				return len(content) >= 12 && bytes.Equal(content[8:12], []byte("WEBP"))
			}
			return true
		}
	}
	return false
}
