// Package repository implements the data access layer over MySQL.  It
// defines a small set of sentinel errors reused across repositories so
// handlers can distinguish failure scenarios: the per-entity not-found
// sentinels map to HTTP 404 responses.
package repository

import "errors"

// ErrResourceNotFound is returned when a resource id does not exist.
var ErrResourceNotFound = errors.New("resource not found")

// ErrMessageNotFound is returned when a message id does not exist.
var ErrMessageNotFound = errors.New("message not found")

// ErrReviewNotFound is returned when a review id does not exist.
var ErrReviewNotFound = errors.New("review not found")
