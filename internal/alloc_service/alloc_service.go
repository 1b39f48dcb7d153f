package alloc_service

import "github.com/AnishMulay/blockfs/internal/block_service"

// AllocService hands out block ids. Its state lives in blocks of the
// BlockService it was built on, so it survives nothing the arena doesn't.
type AllocService interface {
	// Format clears the map and marks the metadata blocks as used.
	Format() error
	// Allocate returns the lowest free block id, or ErrFull.
	Allocate() (block_service.BlockID, error)
	// Free releases bid. Freeing a free block is a no-op.
	Free(bid block_service.BlockID) error
	IsAllocated(bid block_service.BlockID) bool
	// Allocated counts used blocks, metadata included.
	Allocated() int
	// Reserved is the number of permanently used blocks at the start of
	// the arena (superblock plus the map itself).
	Reserved() int
}
