package testutils

import (
	"errors"
	"net"
)

// PickUnusedHostPort reserves a loopback host:port for a local service
// container, releasing the listener so the container can bind it.
func PickUnusedHostPort() (string, error) {
	if listener, err := net.Listen("tcp", "localhost:0"); err != nil {
		return "", errors.New("failed to pick unused endpoint: " + err.Error())
	} else {
		listener.Close()
		return listener.Addr().String(), nil
	}
}
