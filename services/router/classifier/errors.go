// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package classifier

import "fmt"

// ErrorCode identifies a classification failure class. Reasoner and
// malformed-response failures are always recovered by the fallback
// cascade; only strict-mode failures reach the caller.
type ErrorCode string

const (
	ErrCodeReasoner   ErrorCode = "reasoner_failure"
	ErrCodeMalformed  ErrorCode = "malformed_response"
	ErrCodeStrictMode ErrorCode = "strict_mode_failure"
)

// RouterError is the classifier's error type.
type RouterError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *RouterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RouterError) Unwrap() error {
	return e.Err
}

func newRouterError(code ErrorCode, msg string, err error) *RouterError {
	return &RouterError{Code: code, Message: msg, Err: err}
}
