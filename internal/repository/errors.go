// Package repository defines error values shared across the data access
// layer. Single-row lookups surface sql.ErrNoRows from the driver; these
// sentinels cover the remaining cases so the store adapter and handlers
// can distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrNotFound is returned when a lookup or targeted delete matches no
// rows. The store adapter translates it for the engine.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, such as blocking a (seat, schedule) pair twice.
var ErrDuplicate = errors.New("duplicate")
