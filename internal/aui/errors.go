package aui

import "errors"

// Sentinel errors covering the error taxonomy: configuration, integrity
// failure, transport, shape mismatch, and primitive/crypto failure.
// Callers check with errors.Is. Shape validation, Setup's parameter
// and key-derivation failures, integrity verification, csp.Evaluate and
// every step of internal/client wrap one of these with %w. Errors from
// internal/query (a *query.ParseError, a dmpf.Gen error), from the
// JSON/base64 persistence decoding, from file I/O and from record
// encoding are wrapped with %w but carry no sentinel.
var (
	ErrConfig    = errors.New("aui: configuration error")
	ErrIntegrity = errors.New("aui: integrity check failed")
	ErrTransport = errors.New("aui: transport error")
	ErrShape     = errors.New("aui: shape mismatch")
	ErrCrypto    = errors.New("aui: cryptographic primitive error")
)
