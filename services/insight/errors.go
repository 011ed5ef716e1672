// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package insight

import (
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// StatusError is an insight-call failure that carries an HTTP status from the
// upstream provider. Errors without a status (network failures, parse
// failures, shape violations) stay plain and are treated as transient.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("insight provider returned status %d: %v", e.Code, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusOf extracts the upstream HTTP status from err. The second return is
// false when the error carries no status at all.
func StatusOf(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// wrapProviderError converts go-openai error types into StatusError so the
// retry layer can classify them without importing the SDK.
func wrapProviderError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &StatusError{Code: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &StatusError{Code: reqErr.HTTPStatusCode, Err: err}
	}
	return err
}
