package errors

import stdErrors "errors"

// ErrorDump captures the unwrap chain of an error for structured logging.
type ErrorDump struct {
	TopMessage string
	Code       Code
	Chain      []string
}

// Dump walks the error chain and collects every message plus the typed code.
func Dump(err error) ErrorDump {
	dump := ErrorDump{Code: CodeInternal}
	if err == nil {
		return dump
	}
	dump.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		dump.Code = typed.Code()
	}
	for current := err; current != nil; current = stdErrors.Unwrap(current) {
		dump.Chain = append(dump.Chain, current.Error())
	}
	return dump
}
