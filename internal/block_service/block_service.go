package block_service

// BlockID addresses a block in the arena. Ids are 16-bit on disk, so an
// arena holds at most MaxBlocks blocks.
type BlockID uint16

const (
	// NilBlock marks an empty slot. Block 0 holds the superblock and is
	// never handed out by the allocator.
	NilBlock BlockID = 0

	MaxBlocks = 1 << 16
)

// Block is one block worth of bytes.
type Block []byte

// BlockService is a flat array of fixed-size blocks. It does no allocation
// bookkeeping; an out-of-range id is a caller bug and panics.
type BlockService interface {
	ReadBlock(bid BlockID) Block
	WriteBlock(bid BlockID, b Block)
	BlockSize() int
	NumBlocks() int
	// Reset zeroes the whole arena.
	Reset()
}
