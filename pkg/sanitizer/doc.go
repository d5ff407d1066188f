// Package sanitizer normalizes user-supplied resource fields before validation
// and storage.
//
// All functions are idempotent. Invalid input yields an empty string rather
// than an error, leaving rejection to the validators.
package sanitizer
