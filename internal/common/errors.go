// Package common defines shared sentinel errors used across the bot core.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorStore         = errors.New("store error")

	// Submission pipeline errors.
	ErrorStaging = errors.New("staging error")
	ErrorUpload  = errors.New("upload error")
)
