package alloc_service

import "errors"

var (
	ErrFull        = errors.New("no free blocks")
	ErrInvalidFree = errors.New("free of reserved or out-of-range block")
)
