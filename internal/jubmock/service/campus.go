package service

import (
	"fmt"
	"net/netip"
	"strings"
)

// CampusService decides whether a client address is on the campus network.
type CampusService struct {
	Networks []netip.Prefix
}

// ParseNetworks parses a comma separated CIDR list.
func ParseNetworks(list string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, fmt.Errorf("campus network %q: %w", part, err)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// OnCampus reports whether ip falls inside any campus network.
func (s *CampusService) OnCampus(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, n := range s.Networks {
		if n.Contains(addr) {
			return true
		}
	}
	return false
}
