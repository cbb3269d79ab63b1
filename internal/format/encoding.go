package format

import "encoding/binary"

// Heap words are little-endian 32-bit values regardless of host order so a
// heap image written by one machine can be inspected on another.

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+WordSize], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+WordSize])
}

// Pack combines a block size and its allocated flag into a tag word.
func Pack(size uint32, allocated bool) uint32 {
	if allocated {
		return size | AllocatedBit
	}
	return size
}

// TagSize extracts the block size from a tag word.
func TagSize(tag uint32) uint32 {
	return tag & SizeMask
}

// TagAllocated reports whether a tag word has the allocated bit set.
func TagAllocated(tag uint32) bool {
	return tag&AllocatedBit != 0
}
