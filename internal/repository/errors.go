package repository

import "errors"

// ErrNotFound is returned when no document or setting exists under a key
var ErrNotFound = errors.New("record not found")
