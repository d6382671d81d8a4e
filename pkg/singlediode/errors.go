package singlediode

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is wrapped by every error returned while building a
	// ModuleParameters value from physically nonsensical inputs
	ErrInvalidParameter = errors.New("invalid module parameter")

	// ErrNumericalDomain is wrapped by every error returned by Calculate when
	// the operating point lies outside the domain of the model equations
	ErrNumericalDomain = errors.New("operating point outside numerical domain")
)

// ParameterError describes a rejected module parameter
type ParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s = %v: %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// DomainError describes a rejected operating point
type DomainError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%v: %s = %g: %s", ErrNumericalDomain, e.Field, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return ErrNumericalDomain
}
