package auth

import "errors"

// ErrInvalidPassphrase is returned when the supplied passphrase does not
// match the configured hash
var ErrInvalidPassphrase = errors.New("invalid access passphrase")
