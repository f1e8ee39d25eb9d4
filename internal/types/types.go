// =============================================================================
// Sample Sheet Loader - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - tableindex
//   - samplesheet
//   - output
//
// =============================================================================

package types

import "sort"

// =============================================================================
// INDEX TYPES
// =============================================================================

// Record is one row of a sample sheet, keyed by field (column) name.
// Only fields named by the schema are present; columns outside the schema
// are dropped while indexing.
type Record map[string]string

// Index maps a primary key (the "sample" column for sample sheets) to the
// record built for it.
type Index map[string]Record

// Keys returns the index keys in sorted order.
func (idx Index) Keys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns the record's field names in sorted order.
func (r Record) Fields() []string {
	fields := make([]string, 0, len(r))
	for f := range r {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
