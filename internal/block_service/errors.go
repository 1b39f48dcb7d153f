package block_service

import "errors"

var (
	ErrInvalidBlockSize  = errors.New("block size must be a positive multiple of 8")
	ErrInvalidBlockCount = errors.New("block count out of range")
)
