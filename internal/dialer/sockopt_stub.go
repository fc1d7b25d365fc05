//go:build !linux

package dialer

import "errors"

const SocketOptionsSupported = false

var errSocketOptionsUnsupported = errors.New("dialer: socket mark and interface binding are only supported on linux")

func setSocketOptions(_ uintptr, _ Config) error {
	return errSocketOptionsUnsupported
}
