// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exterrors

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/openai/openai-go/v3"
)

// Category groups local errors by who has to act on them.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryConfiguration Category = "configuration"
	CategoryUser          Category = "user"
	CategoryInternal      Category = "internal"
)

// LocalError is an error detected on this side of the wire.
type LocalError struct {
	Code       string
	Category   Category
	Message    string
	Suggestion string
}

func (e *LocalError) Error() string {
	return e.Message
}

// ServiceError is an error reported by a remote service.
type ServiceError struct {
	Operation   string
	ServiceName string
	StatusCode  int
	ErrorCode   string
	Message     string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	}
	if e.ErrorCode == "" {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Operation, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (HTTP %d, %s)", e.Operation, e.Message, e.StatusCode, e.ErrorCode)
}

func Validation(code, message, suggestion string) error {
	return &LocalError{
		Code:       code,
		Category:   CategoryValidation,
		Message:    message,
		Suggestion: suggestion,
	}
}

func Configuration(code, message, suggestion string) error {
	return &LocalError{
		Code:       code,
		Category:   CategoryConfiguration,
		Message:    message,
		Suggestion: suggestion,
	}
}

func User(code, message string) error {
	return &LocalError{
		Code:     code,
		Category: CategoryUser,
		Message:  message,
	}
}

func Internal(code, message string) error {
	return &LocalError{
		Code:     code,
		Category: CategoryInternal,
		Message:  message,
	}
}

// Cancelled returns a user cancellation error.
func Cancelled(message string) error {
	return User(CodeCancelled, message)
}

// IsCancellation checks if an error represents user cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// FromService classifies an error returned by a vendor SDK call. OpenAI and Azure
// Resource Manager errors become a ServiceError carrying the vendor's status and
// message; cancellations become a user error; anything else is returned unchanged.
func FromService(err error, operation string) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		serviceName := ""
		if apiErr.Request != nil && apiErr.Request.URL != nil {
			serviceName = apiErr.Request.URL.Host
		}
		message := apiErr.Message
		if message == "" {
			message = err.Error()
		}
		return &ServiceError{
			Operation:   operation,
			ServiceName: serviceName,
			StatusCode:  apiErr.StatusCode,
			ErrorCode:   apiErr.Code,
			Message:     message,
		}
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		serviceName := ""
		message := "request failed"
		if respErr.RawResponse != nil {
			message = respErr.Error()
			if respErr.RawResponse.Request != nil {
				serviceName = respErr.RawResponse.Request.Host
			}
		}
		return &ServiceError{
			Operation:   operation,
			ServiceName: serviceName,
			StatusCode:  respErr.StatusCode,
			ErrorCode:   respErr.ErrorCode,
			Message:     message,
		}
	}

	if IsCancellation(err) {
		return Cancelled(fmt.Sprintf("%s was cancelled", operation))
	}

	return err
}

// SuggestionOf returns the suggestion attached to a local error, if any.
func SuggestionOf(err error) string {
	var localErr *LocalError
	if errors.As(err, &localErr) {
		return localErr.Suggestion
	}
	return ""
}
