package probeset

import (
	"strings"

	"github.com/maxvaer/hostprobe/internal/probe"
)

// UserSpecs builds one existence probe per platform for a username.
func UserSpecs(platforms []Platform, username string) []probe.Spec {
	specs := make([]probe.Spec, 0, len(platforms))
	for _, p := range platforms {
		specs = append(specs, probe.Spec{
			Kind:    probe.KindHTTPExistence,
			Label:   p.Name,
			URL:     p.ProfileURL(username),
			Markers: p.Markers,
		})
	}
	return specs
}

// PortSpecs builds one TCP connect probe per port against a host.
func PortSpecs(host string, ports []int) []probe.Spec {
	specs := make([]probe.Spec, 0, len(ports))
	for _, port := range ports {
		specs = append(specs, probe.Spec{
			Kind:  probe.KindTCPConnect,
			Label: PortLabel(port),
			Host:  host,
			Port:  port,
		})
	}
	return specs
}

// PathSpecs builds one path probe per entry below a base URL.
func PathSpecs(baseURL string, paths []string) []probe.Spec {
	base := strings.TrimRight(baseURL, "/")
	specs := make([]probe.Spec, 0, len(paths))
	for _, path := range paths {
		specs = append(specs, probe.Spec{
			Kind:  probe.KindPathProbe,
			Label: path,
			URL:   base + "/" + strings.TrimLeft(path, "/"),
		})
	}
	return specs
}

// HeaderSpec builds the single header fetch probe for a URL.
func HeaderSpec(rawURL string) probe.Spec {
	return probe.Spec{
		Kind:  probe.KindHeaderFetch,
		Label: "headers",
		URL:   rawURL,
	}
}
