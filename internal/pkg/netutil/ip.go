// Package netutil has small network helpers.
package netutil

import (
	"net"

	"github.com/pkg/errors"
)

// GetOutboundIP returns the local address used for outbound traffic.
// No packet is sent: dialing UDP only selects a route.
func GetOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", errors.Wrap(err, "resolve outbound ip")
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", errors.New("unexpected local address type")
	}
	return addr.IP.String(), nil
}
