package errors

import (
	"time"
)

/*
	Utility functions to facillitate returning error responses to HTTP clients
*/

type GeneralError struct {
	Message string `json:"message"`
}

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}

// -- Simplest: 1 error with message
func CreateSimpleBadRequest(message string) GeneralErrorResponseDto {
	return GeneralErrorResponseDto{
		Code:      400,
		Message:   "Bad Request",
		Timestamp: time.Now(),
		Errors: []GeneralError{
			{
				Message: message,
			},
		},
	}
}

func CreateSimpleNotFound(message string) GeneralErrorResponseDto {
	return GeneralErrorResponseDto{
		Code:      404,
		Message:   "Not Found",
		Timestamp: time.Now(),
		Errors: []GeneralError{
			{
				Message: message,
			},
		},
	}
}

func CreateSimpleInternalServerError(message string) GeneralErrorResponseDto {
	return GeneralErrorResponseDto{
		Code:      500,
		Message:   "Internal Server Error",
		Timestamp: time.Now(),
		Errors: []GeneralError{
			{
				Message: message,
			},
		},
	}
}

func CreateSimpleServiceUnavailable(message string) GeneralErrorResponseDto {
	return GeneralErrorResponseDto{
		Code:      503,
		Message:   "Service Unavailable",
		Timestamp: time.Now(),
		Errors: []GeneralError{
			{
				Message: message,
			},
		},
	}
}
