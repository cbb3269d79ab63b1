// Package verify checks raw heap images for structural consistency.
//
// # Overview
//
// The checks work on the bytes alone, so they can be pointed at a live
// allocator's region in tests or at a heap file on disk:
//
//   - Skeleton: padding, prologue 16|a at offset 4, epilogue 0|a at the end
//   - Blocks: every block between prologue and epilogue has size >= 16,
//     a multiple of 8, lies inside the region, and header == footer
//   - Coalescing: no two physically adjacent free blocks
//   - FreeList: the list from the sentinel holds exactly the free blocks,
//     once each, with consistent pred links and no cycles
//   - Conservation: block sizes + 8 == region length
//
// # Quick Start
//
//	if err := verify.All(a.Image()); err != nil {
//	    fmt.Printf("heap corrupt:\n%v\n", err)
//	}
//
// All reports every violation it can find joined with errors.Join; each one
// is a *ValidationError carrying the offending offset:
//
//	var ve *verify.ValidationError
//	if errors.As(err, &ve) {
//	    fmt.Println(ve.Type, ve.Offset)
//	}
package verify
