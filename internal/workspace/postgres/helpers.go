// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package postgres

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ulidToStringPtr converts a ULID pointer to a string pointer for SQL
// parameters. Returns nil if the input is nil.
func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseOptionalULID parses an optional ULID string pointer. Returns nil if
// the input is nil. Wraps parse errors with the field name for context.
func parseOptionalULID(strPtr *string, fieldName string) (*ulid.ULID, error) {
	if strPtr == nil {
		return nil, nil
	}
	id, err := ulid.Parse(*strPtr)
	if err != nil {
		return nil, oops.With("operation", "parse "+fieldName).With(fieldName, *strPtr).Wrap(err)
	}
	return &id, nil
}

// ulidsToStrings converts a ULID slice for text[] parameters.
func ulidsToStrings(ids []ulid.ULID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// parseULIDs parses a text[] column back into ULIDs.
func parseULIDs(strs []string, fieldName string) ([]ulid.ULID, error) {
	if len(strs) == 0 {
		return nil, nil
	}
	out := make([]ulid.ULID, len(strs))
	for i, s := range strs {
		id, err := ulid.Parse(s)
		if err != nil {
			return nil, oops.With("operation", "parse "+fieldName).With(fieldName, s).Wrap(err)
		}
		out[i] = id
	}
	return out, nil
}

// parseULID parses a required ULID column.
func parseULID(s, fieldName string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.With("operation", "parse "+fieldName).With(fieldName, s).Wrap(err)
	}
	return id, nil
}
