package translate

import "errors"

// Common errors for the translation pipeline.
var (
	// ErrEmptyResult means a provider answered with no usable translation.
	ErrEmptyResult = errors.New("provider returned empty translation")
	// ErrMalformedResponse means a provider's response body did not match
	// its wire contract.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrAllProvidersExhausted means every provider in the waterfall failed
	// for a chunk.
	ErrAllProvidersExhausted = errors.New("all translation providers exhausted")
	// ErrEmptyText means there was nothing to translate.
	ErrEmptyText = errors.New("empty text")
)
