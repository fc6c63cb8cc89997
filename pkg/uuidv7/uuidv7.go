// Copyright (c) 2026 Tradeway. All rights reserved.
// Author: hello@tradeway.app

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// It is the primary key type across all Tradeway tables and the identifier
// assigned to every chapter, video, and resource inside a course document.
// Because it is time-sortable, it keeps PostgreSQL B-tree indexes compact,
// avoiding the fragmentation common with random UUIDv4.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable (extremely rare).
// This is acceptable as OS entropy failure is an unrecoverable system-level error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
