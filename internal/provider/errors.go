package provider

import "errors"

// Error taxonomy shared by all provider adapters. Callers classify with
// errors.Is; messages carry the provider and operation for logs.
var (
	// ErrAuth marks a 401 or 403 from the upstream API.
	ErrAuth = errors.New("authentication failed")
	// ErrRateLimited marks a 429 that survived retries.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrTransient marks timeouts, transport failures, and 5xx responses
	// that survived retries.
	ErrTransient = errors.New("transient upstream failure")
	// ErrRequest marks a non-auth 4xx the caller should not retry.
	ErrRequest = errors.New("request rejected")
	// ErrPayload marks a response that decoded or mapped badly.
	ErrPayload = errors.New("invalid payload")
)
