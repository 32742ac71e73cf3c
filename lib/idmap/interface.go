package idmap

import "fmt"

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint32

const (
	RetCSuccess         RetCode = iota // 0: Operation executed successfully.
	RetCNotFound                       // 1: No entry exists for the key.
	RetCCacheExpired                   // 2: Entry exists but is older than the configured timeout.
	RetCInvalidArgument                // 3: Nil table or empty key/value.
	RetCInsertError                    // 4: The store rejected the insert.
	RetCFail                           // 5: Generic operation failure.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCNotFound:
		return "NotFound"
	case RetCCacheExpired:
		return "CacheExpired"
	case RetCInvalidArgument:
		return "InvalidArgument"
	case RetCInsertError:
		return "InsertError"
	case RetCFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message. Success is represented by a nil error, never by
// an *Error with RetCSuccess.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("IdMapError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// CodeOf extracts the return code from an error. A nil error maps to
// RetCSuccess, a foreign error type to RetCFail. Callers are expected
// to branch on RetCNotFound and RetCCacheExpired separately: an expired
// entry is still cached and should be refreshed with an overwrite
// write, a missing one should be inserted fresh.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return RetCFail
}

// --------------------------------------------------------------------------
// Domains
// --------------------------------------------------------------------------

// Domain selects which forward/reverse table pair a call operates on.
type Domain int

const (
	DomainUser Domain = iota
	DomainGroup
)

func (d Domain) String() string {
	switch d {
	case DomainUser:
		return "user"
	case DomainGroup:
		return "group"
	default:
		return "unknown"
	}
}
