// Package serviceaddr resolves the network identity this instance reports in
// ProductAggregate.ServiceAddresses.
package serviceaddr

import (
	"fmt"
	"net"
	"os"
	"sync"
)

type Provider interface {
	Address() string
}

// Static always reports the same address.
type Static string

func (s Static) Address() string {
	return string(s)
}

// Host reports "hostname/ip:port", resolved on first use.
type Host struct {
	port int

	once sync.Once
	addr string

	hostname func() (string, error)
	lookupIP func(host string) ([]net.IP, error)
}

func NewHost(port int) *Host {
	return &Host{port: port, hostname: os.Hostname, lookupIP: net.LookupIP}
}

// New returns a Static provider when override is set, otherwise a Host provider.
func New(override string, port int) Provider {
	if override != "" {
		return Static(override)
	}
	return NewHost(port)
}

func (h *Host) Address() string {
	h.once.Do(func() {
		h.addr = h.resolve()
	})
	return h.addr
}

func (h *Host) resolve() string {
	name, err := h.hostname()
	if err != nil || name == "" {
		name = "unknown host name"
	}

	ip := "unknown IP address"
	if ips, err := h.lookupIP(name); err == nil {
		for _, candidate := range ips {
			if v4 := candidate.To4(); v4 != nil {
				ip = v4.String()
				break
			}
		}
		if ip == "unknown IP address" && len(ips) > 0 {
			ip = ips[0].String()
		}
	}

	return fmt.Sprintf("%s/%s:%d", name, ip, h.port)
}
