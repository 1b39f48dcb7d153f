package block_service

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(x/y) for non-negative x and positive y.
func CeilDiv[T constraints.Integer](x, y T) T {
	return (x + y - 1) / y
}

// BitmapBlocks is the number of blocks needed to hold one bit per block.
func BitmapBlocks(blockSize, numBlocks int) int {
	return CeilDiv(numBlocks, blockSize*8)
}
