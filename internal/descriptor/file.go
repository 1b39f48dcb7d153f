package descriptor

import (
	"encoding/binary"
	"fmt"

	"github.com/AnishMulay/blockfs/internal/block_service"
)

// File describes a file: its name, its size in bytes and the ordered ids of
// the blocks holding its data.
type File struct {
	Name     string
	Size     uint32
	blocks   []block_service.BlockID
	capacity int
}

func (l Layout) NewFile(name string) *File {
	return &File{Name: name, capacity: l.FileCapacity}
}

func (f *File) Blocks() []block_service.BlockID {
	return append([]block_service.BlockID(nil), f.blocks...)
}

func (f *File) NumBlocks() int { return len(f.blocks) }

func (f *File) Capacity() int { return f.capacity }

func (f *File) Append(bid block_service.BlockID) error {
	if bid == block_service.NilBlock {
		return fmt.Errorf("%w: appending nil block", ErrCorrupt)
	}
	if len(f.blocks) >= f.capacity {
		return ErrFileTooLarge
	}
	f.blocks = append(f.blocks, bid)
	return nil
}

// Truncate keeps the first n blocks and returns the dropped tail.
func (f *File) Truncate(n int) []block_service.BlockID {
	if n >= len(f.blocks) {
		return nil
	}
	tail := append([]block_service.BlockID(nil), f.blocks[n:]...)
	f.blocks = f.blocks[:n]
	return tail
}

func (l Layout) EncodeFile(f *File) block_service.Block {
	b := make(block_service.Block, l.BlockSize)
	putName(b, f.Name)
	binary.LittleEndian.PutUint32(b[NameSize:], f.Size)
	for i, bid := range f.blocks {
		binary.LittleEndian.PutUint16(b[fileHeaderSize+i*fileSlotSize:], uint16(bid))
	}
	return b
}

func (l Layout) DecodeFile(b block_service.Block) (*File, error) {
	name, err := getName(b)
	if err != nil {
		return nil, err
	}
	f := l.NewFile(name)
	f.Size = binary.LittleEndian.Uint32(b[NameSize:])

	ended := false
	for i := 0; i < l.FileCapacity; i++ {
		bid := block_service.BlockID(binary.LittleEndian.Uint16(b[fileHeaderSize+i*fileSlotSize:]))
		switch {
		case bid == block_service.NilBlock:
			ended = true
		case ended:
			return nil, fmt.Errorf("%w: file %q has a hole at slot %d", ErrCorrupt, name, i)
		default:
			f.blocks = append(f.blocks, bid)
		}
	}
	return f, nil
}
