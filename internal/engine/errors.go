package engine

import (
	"errors"
	"fmt"
)

// Error is a typed engine failure. Insufficient sunlight is not an Error;
// it is a normal outcome reported on the operation's result.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// PlantID identifies the affected plant, when there is one.
	PlantID string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodePlantNotFound indicates the plant id is not owned.
	ErrCodePlantNotFound ErrorCode = "PLANT_NOT_FOUND"

	// ErrCodeUnknownPlantType indicates an unknown species.
	ErrCodeUnknownPlantType ErrorCode = "UNKNOWN_PLANT_TYPE"

	// ErrCodeUnknownWeather indicates a weather outside the known set.
	ErrCodeUnknownWeather ErrorCode = "UNKNOWN_WEATHER"

	// ErrCodeInvalidOffer indicates a nil or empty card offer.
	ErrCodeInvalidOffer ErrorCode = "INVALID_OFFER"

	// ErrCodeEngineStopped indicates the command queue is closed.
	ErrCodeEngineStopped ErrorCode = "ENGINE_STOPPED"
)

// ErrEngineStopped is returned when a command is submitted after Stop, or
// was still queued when the engine shut down.
var ErrEngineStopped = &Error{Code: ErrCodeEngineStopped, Message: "engine is not accepting commands"}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.PlantID != "" {
		return fmt.Sprintf("%s: %s (plant=%s)", e.Code, e.Message, e.PlantID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so errors.Is(err,
// ErrEngineStopped) works for every stopped-engine error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsPlantNotFound reports whether err is a plant-not-found error.
func IsPlantNotFound(err error) bool { return hasCode(err, ErrCodePlantNotFound) }

// IsUnknownPlantType reports whether err is an unknown-species error.
func IsUnknownPlantType(err error) bool { return hasCode(err, ErrCodeUnknownPlantType) }

// IsUnknownWeather reports whether err is an unknown-weather error.
func IsUnknownWeather(err error) bool { return hasCode(err, ErrCodeUnknownWeather) }

// NewPlantNotFoundError creates an Error for an id that is not owned.
func NewPlantNotFoundError(plantID string) *Error {
	return &Error{
		Code:    ErrCodePlantNotFound,
		Message: "no owned plant has this id",
		PlantID: plantID,
	}
}

// NewUnknownPlantTypeError creates an Error for an unknown species.
func NewUnknownPlantTypeError(t string) *Error {
	return &Error{
		Code:    ErrCodeUnknownPlantType,
		Message: fmt.Sprintf("unknown plant type %q", t),
	}
}

// NewUnknownWeatherError creates an Error for an unknown weather.
func NewUnknownWeatherError(w string) *Error {
	return &Error{
		Code:    ErrCodeUnknownWeather,
		Message: fmt.Sprintf("unknown weather %q", w),
	}
}
