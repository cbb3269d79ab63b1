package format

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
func Align8(n int) int {
	return (n + BlockAlignmentMask) & ^BlockAlignmentMask
}

// IsAligned8 reports whether n is a multiple of 8.
func IsAligned8(n int) bool {
	return n&BlockAlignmentMask == 0
}

// BlockSizeFor returns the block size needed to hold a payload of n bytes:
// the payload rounded up to 8 plus the header/footer overhead, never smaller
// than MinBlockSize. n must be positive.
func BlockSizeFor(n int) int {
	if n <= MinBlockSize-TagOverhead {
		return MinBlockSize
	}
	return Align8(n) + TagOverhead
}
