//go:build unix

package adaptor

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/ponyo877/pushy/server/domain"
	"golang.org/x/sys/unix"
)

// Listen opens the TCP listening endpoint with SO_REUSEADDR and the
// configured accept backlog.
func Listen(cfg domain.Config) (net.Listener, error) {
	addr, err := net.ResolveTCPAddr("tcp", cfg.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cfg.Address(), err)
	}

	family, sockaddr, err := socketAddress(addr)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}
	unix.CloseOnExec(fd)

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}
	if err := unix.Bind(fd, sockaddr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to bind %s: %w", cfg.Address(), err)
	}
	if err := unix.Listen(fd, cfg.Backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address(), err)
	}

	// FileListener dups fd, so the file is closed either way.
	file := os.NewFile(uintptr(fd), "pushy-listener")
	defer file.Close()
	ln, err := net.FileListener(file)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap listener: %w", err)
	}
	return ln, nil
}

func socketAddress(addr *net.TCPAddr) (int, unix.Sockaddr, error) {
	if addr.IP == nil || addr.IP.To4() != nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		if ip4 := addr.IP.To4(); ip4 != nil {
			copy(sa.Addr[:], ip4)
		}
		return unix.AF_INET, sa, nil
	}
	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	if addr.Zone != "" {
		zone, err := zoneIndex(addr.Zone)
		if err != nil {
			return 0, nil, err
		}
		sa.ZoneId = zone
	}
	return unix.AF_INET6, sa, nil
}

// zoneIndex maps an IPv6 zone, an interface name or a numeric index, to
// the interface index the kernel expects.
func zoneIndex(zone string) (uint32, error) {
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index), nil
	}
	n, err := strconv.ParseUint(zone, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown IPv6 zone %q", zone)
	}
	return uint32(n), nil
}
