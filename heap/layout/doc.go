// Package layout is the only code that touches raw heap words.
//
// A heap region is a byte slice laid out as
//
//	| pad | prologue hdr | sentinel pred | sentinel succ | prologue ftr | blocks... | epilogue |
//	0     4              8               12              16             24          len-4
//
// Every block is addressed by its payload offset (a Block). The header word
// sits at Block-4 and the footer at Block+size-8. Both hold size|allocated.
// A free block reuses the first two payload words as pred/succ links, which
// are Block values themselves so the image is position independent.
//
// Heap methods marked "unchecked" trust the caller and slice directly; a bad
// offset panics with an index error. The Read* methods are for images that
// may be corrupt and report problems as errors.
package layout
