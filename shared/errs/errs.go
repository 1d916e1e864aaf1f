// Package errs defines the failures the account service reports to callers.
package errs

import "fmt"

// DuplicateCustomerError is returned when a customer already exists for the
// mobile number being registered.
type DuplicateCustomerError struct {
	MobileNumber string
}

func (e *DuplicateCustomerError) Error() string {
	return "Customer already exists with mobile number " + e.MobileNumber
}

// NotFoundError names the resource that could not be located and the lookup
// that was used.
type NotFoundError struct {
	Resource string
	Field    string
	Value    string
}

func NewNotFound(resource, field string, value any) *NotFoundError {
	return &NotFoundError{Resource: resource, Field: field, Value: fmt.Sprint(value)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with the given input data %s : '%s'", e.Resource, e.Field, e.Value)
}
