package netutil

import (
	"fmt"
	"net"
)

// ExpandCIDR takes a CIDR range and returns the host addresses in it.
// A bare IP is treated as a one-address range.
func ExpandCIDR(cidr string) ([]string, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		// Maybe it's a single IP, not a CIDR.
		ip = net.ParseIP(cidr)
		if ip == nil {
			return nil, fmt.Errorf("invalid CIDR or IP: %q", cidr)
		}
		mask := net.CIDRMask(32, 32)
		if ip.To4() == nil {
			mask = net.CIDRMask(128, 128)
		}
		ipnet = &net.IPNet{IP: ip, Mask: mask}
	}

	// Refuse ranges wider than 16 host bits (65536 addresses). A
	// typo'd /8 or a v6 /64 would otherwise expand forever.
	if ones, bits := ipnet.Mask.Size(); bits-ones > 16 {
		return nil, fmt.Errorf("CIDR %q too large, /%d is the widest supported range", cidr, bits-16)
	}

	var hosts []string
	for ip := ip.Mask(ipnet.Mask); ipnet.Contains(ip); inc(ip) {
		// Skip network and broadcast addresses for /24 and larger.
		ones, bits := ipnet.Mask.Size()
		if bits-ones > 1 {
			if ip.Equal(ipnet.IP) {
				continue // network address
			}
			bcast := broadcastAddr(ipnet)
			if ip.Equal(bcast) {
				continue // broadcast address
			}
		}
		hosts = append(hosts, ip.String())
	}

	return hosts, nil
}

func inc(ip net.IP) {
	for j := len(ip) - 1; j >= 0; j-- {
		ip[j]++
		if ip[j] > 0 {
			break
		}
	}
}

func broadcastAddr(n *net.IPNet) net.IP {
	ip := make(net.IP, len(n.IP))
	for i := range ip {
		ip[i] = n.IP[i] | ^n.Mask[i]
	}
	return ip
}
