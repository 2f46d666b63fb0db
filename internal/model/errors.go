package model

import (
	"errors"
	"fmt"
)

// ErrEmptySelection is returned when a selection has no competency columns.
var ErrEmptySelection = errors.New("select at least one competency column")

// ErrMissingCredential is returned when no API key is available for the model client.
var ErrMissingCredential = errors.New("API key is not set")

// ConfigError is fatal to the whole run: no rows are processed.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InputError is fatal to the current attempt; the operator must re-supply input.
type InputError struct {
	Source string // file name, empty when not file related
	Err    error
}

func (e *InputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("input error in %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("input error: %v", e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// HTTPError wraps an HTTP status code returned by a model or webhook endpoint.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
