//go:build !unix

package adaptor

import (
	"fmt"
	"net"

	"github.com/ponyo877/pushy/server/domain"
)

// Listen opens the TCP listening endpoint. The accept backlog is left to
// the platform default here.
func Listen(cfg domain.Config) (net.Listener, error) {
	ln, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address(), err)
	}
	return ln, nil
}
