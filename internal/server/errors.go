package server

import "errors"

var ErrUnknownOperation = errors.New("unknown operation")
