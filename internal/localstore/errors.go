package localstore

import "errors"

// ErrInvalidKey is returned for keys that cannot name a file
var ErrInvalidKey = errors.New("invalid key")
