// Package sysalloc provides the underlying allocators that the tracking layer
// delegates to.
//
// # Allocator Interface
//
// Every implementation exposes the four primitive heap operations:
//
//   - Malloc(size): allocate size bytes
//   - Calloc(n, size): allocate n*size zeroed bytes
//   - Realloc(p, size): resize a block, possibly moving it
//   - Free(p): release a block
//
// A nil return means the allocator could not satisfy the request. No error
// values are produced on the allocation path, matching the C allocator
// contract.
//
// # Implementations
//
// Libc: C malloc/calloc/realloc/free through cgo. Without cgo it falls back
// to Heap.
//
// Heap: blocks carved from the Go heap and kept reachable until Free. An
// optional byte limit makes exhaustion observable.
//
// Pool: power-of-two size classes (16 B to 4 KiB). Freed blocks are parked in
// per-class FIFO queues and handed out again, so pointer values get reused.
//
// Mmap: one anonymous mapping per allocation. Each mapping carries a small
// length header so Free and Realloc need no side table.
//
// # Thread Safety
//
// All implementations are safe for concurrent use.
package sysalloc
