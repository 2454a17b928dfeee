package transfer

import "errors"

var (
	ErrUnexpectedPacket = errors.New("transfer: packet arrived out of the expected START/DATA/END order")
	ErrSizeMismatch     = errors.New("transfer: bytes received do not match the START header's declared size")
)
