package regionapi

import (
	"fmt"
)

// ErrorCode represents an API error code.
type ErrorCode string

const (
	ErrorCode_BAD_REQUEST             ErrorCode = "BAD_REQUEST"             // Bad request
	ErrorCode_INTERNAL_SERVER_ERROR   ErrorCode = "INTERNAL_SERVER_ERROR"   // Internal server error
	ErrorCode_IP2LOCATION_UNAVAILABLE ErrorCode = "IP2LOCATION_UNAVAILABLE" // Geolocation is not configured
	ErrorCode_NOT_US                  ErrorCode = "NOT_US"                  // Address is not in a U.S. region
)

// ErrorObj contains an error code and a message for API responses.
type ErrorObj struct {
	Code    ErrorCode `json:"enum"`
	Message string    `json:"msg"` // note: no omitempty
}

// Obj returns an ErrorObj.
func (n ErrorCode) Obj() ErrorObj {
	return ErrorObj{
		Code: n,
	}
}

// MessageObj is like Message, but returns an ErrorObj.
func (n ErrorCode) MessageObj() ErrorObj {
	return ErrorObj{
		Code:    n,
		Message: n.Message(),
	}
}

// MessageObjf is like Messagef, but returns an ErrorObj.
func (n ErrorCode) MessageObjf(format string, a ...interface{}) ErrorObj {
	return ErrorObj{
		Code:    n,
		Message: n.Messagef(format, a...),
	}
}

// Message returns the default message for error code n.
func (n ErrorCode) Message() string {
	switch n {
	case ErrorCode_BAD_REQUEST:
		return "Bad request"
	case ErrorCode_INTERNAL_SERVER_ERROR:
		return "Internal server error"
	case ErrorCode_IP2LOCATION_UNAVAILABLE:
		return "Geolocation is not configured"
	case ErrorCode_NOT_US:
		return "Address is not in a U.S. region"
	default:
		return string(n)
	}
}

// Messagef returns Message() with additional text appended after ": ".
func (n ErrorCode) Messagef(format string, a ...interface{}) string {
	if format == "" {
		return n.Message()
	}
	return n.Message() + ": " + fmt.Sprintf(format, a...)
}
