//go:build linux

package dialer

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// SocketOptionsSupported reports whether Mark and Interface can be applied on
// this platform.
const SocketOptionsSupported = true

var errSocketOptionsUnsupported = errors.New("dialer: socket options unsupported")

func setSocketOptions(fd uintptr, cfg Config) error {
	if cfg.Mark != 0 {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_MARK, cfg.Mark); err != nil {
			return fmt.Errorf("set so_mark %d: %w", cfg.Mark, err)
		}
	}
	if cfg.Interface != "" {
		if err := unix.BindToDevice(int(fd), cfg.Interface); err != nil {
			return fmt.Errorf("bind to device %s: %w", cfg.Interface, err)
		}
	}
	return nil
}
