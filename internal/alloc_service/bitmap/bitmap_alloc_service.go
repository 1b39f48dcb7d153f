package bitmap

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/AnishMulay/blockfs/internal/alloc_service"
	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/AnishMulay/blockfs/internal/log_service"
)

// BitmapStart is the first block of the map; block 0 is the superblock.
const BitmapStart block_service.BlockID = 1

// BitmapAllocService keeps one bit per block in a run of blocks starting at
// BitmapStart. Bit i of the map is bit i%8 of byte i/8, counted across the
// run. Every call goes back to the block store.
type BitmapAllocService struct {
	bs           block_service.BlockService
	ls           log_service.LogService
	bitmapBlocks int
	bitsPerBlock int
	total        int
}

func NewBitmapAllocService(bs block_service.BlockService, ls log_service.LogService) *BitmapAllocService {
	return &BitmapAllocService{
		bs:           bs,
		ls:           ls,
		bitmapBlocks: block_service.BitmapBlocks(bs.BlockSize(), bs.NumBlocks()),
		bitsPerBlock: bs.BlockSize() * 8,
		total:        bs.NumBlocks(),
	}
}

func (a *BitmapAllocService) BitmapBlocks() int { return a.bitmapBlocks }

func (a *BitmapAllocService) Reserved() int { return 1 + a.bitmapBlocks }

// locate maps bid to the map block holding its bit and the bit's offset
// inside that block.
func (a *BitmapAllocService) locate(bid block_service.BlockID) (block_service.BlockID, int) {
	i := int(bid)
	return BitmapStart + block_service.BlockID(i/a.bitsPerBlock), i % a.bitsPerBlock
}

func (a *BitmapAllocService) Format() error {
	reserved := a.Reserved()
	if reserved >= a.total {
		return fmt.Errorf("%w: %d reserved blocks leave no room in %d", alloc_service.ErrFull, reserved, a.total)
	}

	for i := 0; i < a.bitmapBlocks; i++ {
		blk := make(block_service.Block, a.bs.BlockSize())
		for bit := 0; bit < a.bitsPerBlock; bit++ {
			if i*a.bitsPerBlock+bit >= reserved {
				break
			}
			blk[bit/8] |= 1 << (bit % 8)
		}
		a.bs.WriteBlock(BitmapStart+block_service.BlockID(i), blk)
	}

	a.ls.Info(log_service.LogEvent{
		Message:  "Bitmap formatted",
		Metadata: map[string]any{"bitmapBlocks": a.bitmapBlocks, "reserved": reserved, "total": a.total},
	})
	return nil
}

func (a *BitmapAllocService) Allocate() (block_service.BlockID, error) {
	for i := 0; i < a.bitmapBlocks; i++ {
		mapBid := BitmapStart + block_service.BlockID(i)
		blk := a.bs.ReadBlock(mapBid)

		for w := 0; w+8 <= len(blk); w += 8 {
			word := binary.LittleEndian.Uint64(blk[w:])
			if word == ^uint64(0) {
				continue
			}
			bit := w*8 + bits.TrailingZeros64(^word)
			id := i*a.bitsPerBlock + bit
			if id >= a.total {
				return block_service.NilBlock, alloc_service.ErrFull
			}

			blk[bit/8] |= 1 << (bit % 8)
			a.bs.WriteBlock(mapBid, blk)

			a.ls.Debug(log_service.LogEvent{
				Message:  "Block allocated",
				Metadata: map[string]any{"bid": id},
			})
			return block_service.BlockID(id), nil
		}
	}
	return block_service.NilBlock, alloc_service.ErrFull
}

func (a *BitmapAllocService) Free(bid block_service.BlockID) error {
	if int(bid) < a.Reserved() || int(bid) >= a.total {
		a.ls.Error(log_service.LogEvent{
			Message:  "Refusing to free block",
			Metadata: map[string]any{"bid": bid},
		})
		return fmt.Errorf("%w: %d", alloc_service.ErrInvalidFree, bid)
	}

	mapBid, bit := a.locate(bid)
	blk := a.bs.ReadBlock(mapBid)
	mask := byte(1) << (bit % 8)
	if blk[bit/8]&mask == 0 {
		a.ls.Warn(log_service.LogEvent{
			Message:  "Block already free",
			Metadata: map[string]any{"bid": bid},
		})
		return nil
	}
	blk[bit/8] &^= mask
	a.bs.WriteBlock(mapBid, blk)

	a.ls.Debug(log_service.LogEvent{
		Message:  "Block freed",
		Metadata: map[string]any{"bid": bid},
	})
	return nil
}

func (a *BitmapAllocService) IsAllocated(bid block_service.BlockID) bool {
	if int(bid) >= a.total {
		return false
	}
	mapBid, bit := a.locate(bid)
	blk := a.bs.ReadBlock(mapBid)
	return blk[bit/8]&(1<<(bit%8)) != 0
}

func (a *BitmapAllocService) Allocated() int {
	n := 0
	for i := 0; i < a.bitmapBlocks; i++ {
		blk := a.bs.ReadBlock(BitmapStart + block_service.BlockID(i))
		for w := 0; w+8 <= len(blk); w += 8 {
			n += bits.OnesCount64(binary.LittleEndian.Uint64(blk[w:]))
		}
	}
	return n
}

var _ alloc_service.AllocService = (*BitmapAllocService)(nil)
