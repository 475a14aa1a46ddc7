// Package tnet opens listeners from address flags
package tnet

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ridge/must/v2"
)

var lc = net.ListenConfig{KeepAlive: 3 * time.Minute}

// Listen opens a listener on addr, the value of an address flag:
//
//   - "unix:PATH" listens on a UNIX domain socket;
//   - "tcp:[HOST]:PORT" or "[HOST]:PORT" listens on TCP with keep-alive;
//   - a bare "PORT" listens on TCP on localhost only.
func Listen(addr string) (net.Listener, error) {
	network, address := "tcp", addr
	if rest, ok := strings.CutPrefix(addr, "unix:"); ok {
		network, address = "unix", rest
	} else if rest, ok := strings.CutPrefix(addr, "tcp:"); ok {
		address = rest
	}
	if network == "tcp" && !strings.Contains(address, ":") {
		address = net.JoinHostPort("localhost", address)
	}

	l, err := lc.Listen(context.Background(), network, address)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return l, nil
}

// ListenLocal listens on a free TCP port of localhost. Panics on failure.
func ListenLocal() net.Listener {
	return must.OK1(Listen("0"))
}
