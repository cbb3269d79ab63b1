// Package trace parses, generates and replays allocation traces.
//
// The text format is the classic malloc-lab one: four header lines followed
// by one operation per line.
//
//	20000        suggested heap size (informational)
//	2            number of distinct ids
//	4            number of operations
//	1            weight
//	a 0 512      allocate id 0 with 512 bytes
//	r 0 640      resize id 0 to 640 bytes
//	a 1 128
//	f 0          free id 0
//
// Replay drives an allocator with a trace and checks it the way a harness
// would: every payload is filled with an id-derived pattern, fingerprinted
// with xxhash3 and re-checked before it is freed or resized; live payloads
// must be aligned and must never overlap; optionally the whole heap is run
// through verify.All every N operations.
package trace
