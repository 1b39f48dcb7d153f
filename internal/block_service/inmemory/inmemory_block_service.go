package inmemory

import (
	"fmt"

	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/AnishMulay/blockfs/internal/log_service"
)

type InMemoryBlockService struct {
	arena     []byte
	blockSize int
	numBlocks int
	ls        log_service.LogService
}

func NewInMemoryBlockService(blockSize, numBlocks int, ls log_service.LogService) (*InMemoryBlockService, error) {
	if blockSize <= 0 || blockSize%8 != 0 {
		return nil, fmt.Errorf("%w: %d", block_service.ErrInvalidBlockSize, blockSize)
	}
	if numBlocks <= 0 || numBlocks > block_service.MaxBlocks {
		return nil, fmt.Errorf("%w: %d", block_service.ErrInvalidBlockCount, numBlocks)
	}

	ls.Info(log_service.LogEvent{
		Message:  "Allocating block arena",
		Metadata: map[string]any{"blockSize": blockSize, "numBlocks": numBlocks, "bytes": blockSize * numBlocks},
	})

	return &InMemoryBlockService{
		arena:     make([]byte, blockSize*numBlocks),
		blockSize: blockSize,
		numBlocks: numBlocks,
		ls:        ls,
	}, nil
}

func (bs *InMemoryBlockService) span(bid block_service.BlockID) []byte {
	if int(bid) >= bs.numBlocks {
		panic(fmt.Sprintf("block id %d out of range [0, %d)", bid, bs.numBlocks))
	}
	off := int(bid) * bs.blockSize
	return bs.arena[off : off+bs.blockSize]
}

func (bs *InMemoryBlockService) ReadBlock(bid block_service.BlockID) block_service.Block {
	b := make(block_service.Block, bs.blockSize)
	copy(b, bs.span(bid))
	return b
}

func (bs *InMemoryBlockService) WriteBlock(bid block_service.BlockID, b block_service.Block) {
	if len(b) != bs.blockSize {
		panic(fmt.Sprintf("write of %d bytes to block %d, block size is %d", len(b), bid, bs.blockSize))
	}
	copy(bs.span(bid), b)
}

func (bs *InMemoryBlockService) BlockSize() int { return bs.blockSize }

func (bs *InMemoryBlockService) NumBlocks() int { return bs.numBlocks }

func (bs *InMemoryBlockService) Reset() {
	clear(bs.arena)
	bs.ls.Debug(log_service.LogEvent{Message: "Block arena zeroed"})
}

var _ block_service.BlockService = (*InMemoryBlockService)(nil)
