package utils

import "errors"

// ErrorRecordNotFound is returned by single-record lookups so callers can
// map a missing row without depending on the storage layer's sentinel.
var ErrorRecordNotFound = errors.New("record not found")
