package descriptor

import (
	"encoding/binary"
	"fmt"
	"iter"

	"github.com/AnishMulay/blockfs/internal/block_service"
)

// Entry names one child of a directory. An entry whose BID is NilBlock is
// an empty slot.
type Entry struct {
	BID  block_service.BlockID
	Kind Kind
}

func (e Entry) Empty() bool { return e.BID == block_service.NilBlock }

// Directory is a fixed-capacity table of child entries. Slots keep their
// position: removing a child leaves a hole that the next Add reuses.
type Directory struct {
	Name    string
	Parent  block_service.BlockID
	entries []Entry
	count   int
}

func (l Layout) NewDirectory(name string, parent block_service.BlockID) *Directory {
	return &Directory{
		Name:    name,
		Parent:  parent,
		entries: make([]Entry, l.DirCapacity),
	}
}

func (d *Directory) Count() int { return d.count }

func (d *Directory) Capacity() int { return len(d.entries) }

func (d *Directory) Entry(slot int) Entry { return d.entries[slot] }

// Add stores e in the first empty slot.
func (d *Directory) Add(e Entry) (int, error) {
	if e.Empty() {
		return -1, fmt.Errorf("%w: adding empty entry", ErrCorrupt)
	}
	for i := range d.entries {
		if d.entries[i].Empty() {
			d.entries[i] = e
			d.count++
			return i, nil
		}
	}
	return -1, ErrDirectoryFull
}

// Clear empties slot and returns what it held.
func (d *Directory) Clear(slot int) Entry {
	e := d.entries[slot]
	if !e.Empty() {
		d.entries[slot] = Entry{}
		d.count--
	}
	return e
}

// Live yields occupied slots in table order.
func (d *Directory) Live() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range d.entries {
			if e.Empty() {
				continue
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

func (l Layout) EncodeDirectory(d *Directory) block_service.Block {
	b := make(block_service.Block, l.BlockSize)
	putName(b, d.Name)
	binary.LittleEndian.PutUint32(b[NameSize:], uint32(d.count))
	binary.LittleEndian.PutUint16(b[NameSize+4:], uint16(d.Parent))
	for i, e := range d.entries {
		off := dirHeaderSize + i*dirEntrySize
		binary.LittleEndian.PutUint16(b[off:], uint16(e.BID))
		b[off+2] = byte(e.Kind)
	}
	return b
}

func (l Layout) DecodeDirectory(b block_service.Block) (*Directory, error) {
	name, err := getName(b)
	if err != nil {
		return nil, err
	}
	d := l.NewDirectory(name, block_service.BlockID(binary.LittleEndian.Uint16(b[NameSize+4:])))
	stored := int(binary.LittleEndian.Uint32(b[NameSize:]))

	for i := range d.entries {
		off := dirHeaderSize + i*dirEntrySize
		bid := block_service.BlockID(binary.LittleEndian.Uint16(b[off:]))
		if bid == block_service.NilBlock {
			continue
		}
		kind := Kind(b[off+2])
		if kind != KindDirectory && kind != KindFile {
			return nil, fmt.Errorf("%w: directory %q slot %d has %v", ErrCorrupt, name, i, kind)
		}
		d.entries[i] = Entry{BID: bid, Kind: kind}
		d.count++
	}

	if stored != d.count {
		return nil, fmt.Errorf("%w: directory %q records %d entries, holds %d", ErrCorrupt, name, stored, d.count)
	}
	return d, nil
}
