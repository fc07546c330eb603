// Package registry holds the bounded table of live allocations used for leak
// detection.
//
// The table is an ordered slice with a capacity fixed at construction. Lookups
// are linear scans. Removal compacts the slice so the remaining records keep
// their relative order, which makes the leak report follow insertion order.
//
// # Thread Safety
//
// Registry instances are not thread-safe. Callers must synchronize access
// externally.
package registry

import "unsafe"

// DefaultCapacity is the number of records a registry holds when no capacity
// is configured.
const DefaultCapacity = 1024

// Record describes one live allocation.
type Record struct {
	Ptr  unsafe.Pointer
	Size uintptr

	// Call site that produced the allocation. Carried for output only.
	File string
	Line int
	Func string
}

// Registry is a fixed-capacity, insertion-ordered set of Records keyed by
// pointer.
type Registry struct {
	records []Record
	cap     int
}

// New returns an empty registry holding at most capacity records.
// A non-positive capacity selects DefaultCapacity.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		records: make([]Record, 0, capacity),
		cap:     capacity,
	}
}

// Find returns the index of the record for p, or -1.
func (r *Registry) Find(p unsafe.Pointer) int {
	for i := range r.records {
		if r.records[i].Ptr == p {
			return i
		}
	}
	return -1
}

// Remove deletes the first record for p and reports whether one existed.
// Later records shift left over the removed slot.
func (r *Registry) Remove(p unsafe.Pointer) bool {
	idx := r.Find(p)
	if idx < 0 {
		return false
	}
	copy(r.records[idx:], r.records[idx+1:])
	r.records[len(r.records)-1] = Record{}
	r.records = r.records[:len(r.records)-1]
	return true
}

// Insert appends rec and reports whether it was stored.
// A full registry drops the record.
func (r *Registry) Insert(rec Record) bool {
	if len(r.records) >= r.cap {
		return false
	}
	r.records = append(r.records, rec)
	return true
}

// Len returns the number of records held.
func (r *Registry) Len() int { return len(r.records) }

// Cap returns the maximum number of records.
func (r *Registry) Cap() int { return r.cap }

// Full reports whether further inserts will be dropped.
func (r *Registry) Full() bool { return len(r.records) >= r.cap }

// At returns the record at index i.
func (r *Registry) At(i int) Record { return r.records[i] }

// Records returns a copy of the held records in registry order.
func (r *Registry) Records() []Record {
	if len(r.records) == 0 {
		return nil
	}
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
