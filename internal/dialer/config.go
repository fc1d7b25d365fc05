package dialer

import (
	"net"
	"time"
)

type Config struct {
	DialTimeout time.Duration
	KeepAlive   net.KeepAliveConfig

	// Mark sets SO_MARK on outbound sockets when non-zero.
	Mark int
	// Interface binds outbound sockets to a network device when non-empty.
	Interface string
}
