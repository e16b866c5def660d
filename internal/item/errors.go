package item

import "errors"

// ErrQuotaExceeded is returned when an upload would push a user, category, or
// the whole store past its object-count ceiling. No bytes are written.
var ErrQuotaExceeded = errors.New("item quota exceeded")

// ErrUnsupportedEncoding is returned when a retrieval asks for an encoding
// other than identity or base64.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// ErrEmptyResult is returned when the upload pipeline claims an upload but
// produces no variants; a plugin contract violation, surfaced as a server
// error rather than a client one.
var ErrEmptyResult = errors.New("upload pipeline returned no variants")

// Available response encodings for item retrieval.
const (
	EncodingIdentity = "IDENTITY"
	EncodingBase64   = "BASE64"
)

// EncodingAvailable reports whether enc names a supported response encoding.
// The empty string means identity.
func EncodingAvailable(enc string) bool {
	return enc == "" || enc == EncodingIdentity || enc == EncodingBase64
}
