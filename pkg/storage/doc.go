// Package storage provides an S3-compatible file disk.
//
// Operation failures are *Error values carrying an HTTP status, so a handler can
// return them unchanged: a missing key renders as 404 and denied access as 403.
package storage
