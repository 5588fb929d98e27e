package webinfo

import "strings"

// Robots holds the Allow and Disallow rules of a robots.txt file.
type Robots struct {
	Allow    []string
	Disallow []string
}

// Empty reports whether no rules were found.
func (r *Robots) Empty() bool {
	return len(r.Allow) == 0 && len(r.Disallow) == 0
}

// ParseRobots extracts Allow and Disallow rules from a robots.txt
// body. Comments and other directives are skipped.
func ParseRobots(body []byte) *Robots {
	robots := &Robots{}

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		directive, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(directive)) {
		case "allow":
			robots.Allow = append(robots.Allow, value)
		case "disallow":
			robots.Disallow = append(robots.Disallow, value)
		}
	}

	return robots
}
