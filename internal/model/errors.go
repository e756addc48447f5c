package model

import "errors"

// Common errors used across the application
var (
	// Credential errors
	ErrCredentialNotFound  = errors.New("no credential stored")
	ErrMalformedCredential = errors.New("malformed credential")

	// Expiry classification
	ErrExpiredGuestCredential = errors.New("guest credential expired")
	ErrExpiredUserCredential  = errors.New("user credential expired")

	// Refresh errors
	ErrBootstrapFailure     = errors.New("failed to establish guest session")
	ErrDoubleRetryAttempt   = errors.New("request already retried after refresh")
	ErrRequestNotReplayable = errors.New("request body cannot be replayed")

	// Session lifecycle errors
	ErrAlreadyInitialized = errors.New("session already initialized")
	ErrNotInitialized     = errors.New("session not initialized")
)
