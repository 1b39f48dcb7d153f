package inmemory

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/AnishMulay/blockfs/internal/block_service"
	"github.com/AnishMulay/blockfs/internal/log_service/localdisc"
)

func newTestStore(t *testing.T, blockSize, numBlocks int) *InMemoryBlockService {
	t.Helper()
	bs, err := NewInMemoryBlockService(blockSize, numBlocks, localdisc.NewWriterLogService(io.Discard, "test", "ERROR"))
	if err != nil {
		t.Fatalf("NewInMemoryBlockService() error = %v", err)
	}
	return bs
}

func TestNewInMemoryBlockService(t *testing.T) {
	tests := []struct {
		name      string
		blockSize int
		numBlocks int
		errorIs   error
	}{
		{name: "default geometry", blockSize: 1024, numBlocks: 40960},
		{name: "largest addressable", blockSize: 512, numBlocks: block_service.MaxBlocks},
		{name: "zero block size", blockSize: 0, numBlocks: 10, errorIs: block_service.ErrInvalidBlockSize},
		{name: "unaligned block size", blockSize: 1001, numBlocks: 10, errorIs: block_service.ErrInvalidBlockSize},
		{name: "no blocks", blockSize: 1024, numBlocks: 0, errorIs: block_service.ErrInvalidBlockCount},
		{name: "beyond 16-bit ids", blockSize: 512, numBlocks: block_service.MaxBlocks + 1, errorIs: block_service.ErrInvalidBlockCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs, err := NewInMemoryBlockService(tt.blockSize, tt.numBlocks, localdisc.NewWriterLogService(io.Discard, "test", "ERROR"))
			if tt.errorIs != nil {
				if !errors.Is(err, tt.errorIs) {
					t.Errorf("NewInMemoryBlockService() error = %v, want %v", err, tt.errorIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewInMemoryBlockService() error = %v", err)
			}
			if bs.BlockSize() != tt.blockSize || bs.NumBlocks() != tt.numBlocks {
				t.Errorf("geometry = %d x %d, want %d x %d", bs.BlockSize(), bs.NumBlocks(), tt.blockSize, tt.numBlocks)
			}
		})
	}
}

func TestReadWriteBlock(t *testing.T) {
	bs := newTestStore(t, 512, 8)

	data := bytes.Repeat([]byte{0xAB}, 512)
	bs.WriteBlock(3, data)

	got := bs.ReadBlock(3)
	if !bytes.Equal(got, data) {
		t.Errorf("ReadBlock(3) does not match written data")
	}
	if !bytes.Equal(bs.ReadBlock(2), make([]byte, 512)) || !bytes.Equal(bs.ReadBlock(4), make([]byte, 512)) {
		t.Errorf("write to block 3 leaked into a neighbour")
	}

	// Reads are copies.
	got[0] = 0
	if bs.ReadBlock(3)[0] != 0xAB {
		t.Errorf("mutating a read block changed the store")
	}
	data[1] = 0
	if bs.ReadBlock(3)[1] != 0xAB {
		t.Errorf("mutating the written slice changed the store")
	}
}

func TestReset(t *testing.T) {
	bs := newTestStore(t, 512, 4)
	bs.WriteBlock(1, bytes.Repeat([]byte{1}, 512))

	bs.Reset()

	if !bytes.Equal(bs.ReadBlock(1), make([]byte, 512)) {
		t.Errorf("Reset() left data in block 1")
	}
}

func TestOutOfRangePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(bs *InMemoryBlockService)
	}{
		{name: "read past end", fn: func(bs *InMemoryBlockService) { bs.ReadBlock(4) }},
		{name: "write past end", fn: func(bs *InMemoryBlockService) { bs.WriteBlock(4, make([]byte, 512)) }},
		{name: "short write", fn: func(bs *InMemoryBlockService) { bs.WriteBlock(0, make([]byte, 100)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := newTestStore(t, 512, 4)
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic")
				}
			}()
			tt.fn(bs)
		})
	}
}
