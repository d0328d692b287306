package models

import "fmt"

// ConfigError reports missing or invalid mandatory settings
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// AuthError reports an invalid or expired chat platform session
type AuthError struct {
	Hint string
	Err  error
}

func (e *AuthError) Error() string {
	msg := "telegram session is not authorized"
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Hint)
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError reports a failed history fetch for a single dialog
type FetchError struct {
	Chat string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch messages for %q: %v", e.Chat, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ProviderError reports a failed completion request
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DeliveryError reports a failed send of one report fragment
type DeliveryError struct {
	Index int
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver fragment %d: %v", e.Index, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
