package imaging

import "errors"

var (
	ErrNotAnImage     = errors.New("data is not a decodable image")
	ErrInvalidOptions = errors.New("invalid options")
	ErrEncodeFailed   = errors.New("failed to encode image")
)
