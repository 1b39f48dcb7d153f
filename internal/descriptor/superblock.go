package descriptor

import (
	"encoding/binary"
	"fmt"

	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/google/uuid"
)

const Magic = "BLOCKFS1"

type Superblock struct {
	FsID         uuid.UUID
	FsSize       uint64
	BlockSize    uint32
	TotalBlocks  uint32
	BitmapStart  block_service.BlockID
	BitmapBlocks uint16
	RootBID      block_service.BlockID
}

func (l Layout) EncodeSuperblock(sb Superblock) block_service.Block {
	b := make(block_service.Block, l.BlockSize)
	copy(b[0:8], Magic)
	copy(b[8:24], sb.FsID[:])
	binary.LittleEndian.PutUint64(b[24:32], sb.FsSize)
	binary.LittleEndian.PutUint32(b[32:36], sb.BlockSize)
	binary.LittleEndian.PutUint32(b[36:40], sb.TotalBlocks)
	binary.LittleEndian.PutUint16(b[40:42], uint16(sb.BitmapStart))
	binary.LittleEndian.PutUint16(b[42:44], sb.BitmapBlocks)
	binary.LittleEndian.PutUint16(b[44:46], uint16(sb.RootBID))
	return b
}

func (l Layout) DecodeSuperblock(b block_service.Block) (Superblock, error) {
	if string(b[0:8]) != Magic {
		return Superblock{}, fmt.Errorf("%w: bad superblock magic %q", ErrCorrupt, b[0:8])
	}
	var sb Superblock
	copy(sb.FsID[:], b[8:24])
	sb.FsSize = binary.LittleEndian.Uint64(b[24:32])
	sb.BlockSize = binary.LittleEndian.Uint32(b[32:36])
	sb.TotalBlocks = binary.LittleEndian.Uint32(b[36:40])
	sb.BitmapStart = block_service.BlockID(binary.LittleEndian.Uint16(b[40:42]))
	sb.BitmapBlocks = binary.LittleEndian.Uint16(b[42:44])
	sb.RootBID = block_service.BlockID(binary.LittleEndian.Uint16(b[44:46]))

	if int(sb.BlockSize) != l.BlockSize {
		return Superblock{}, fmt.Errorf("%w: superblock block size %d, layout %d", ErrCorrupt, sb.BlockSize, l.BlockSize)
	}
	return sb, nil
}
