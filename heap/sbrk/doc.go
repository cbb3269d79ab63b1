// Package sbrk provides the heap-extend primitives consumed by the allocator.
//
// An Extender owns one contiguous region that only ever grows at its end,
// the way brk/sbrk grows a process data segment. The allocator never asks for
// memory any other way.
//
// # Implementations
//
//   - Mem: a fixed in-process reservation, handed out front to back.
//   - File: a heap persisted in a file, grown with ftruncate and remapped.
//   - Limited: a wrapper enforcing a byte budget on any Extender.
//
// # Offsets, not addresses
//
// Extend returns the offset of the previous break, not a pointer. File
// remaps the whole region when it grows, so slices returned by Bytes are
// invalidated by Extend; offsets stay valid forever.
package sbrk
