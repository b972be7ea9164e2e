package fixture

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/idna"
)

var errEmptyHost = errors.New("host is empty")

// NormalizeHost lower-cases a host, converts internationalised names to
// their ASCII form and drops the port when it is the default for scheme.
// An empty scheme drops both :80 and :443.
func NormalizeHost(host, scheme string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", errEmptyHost
	}

	name, port := host, ""
	if h, p, err := net.SplitHostPort(host); err == nil {
		name, port = h, p
	}

	if isDefaultPort(port, strings.ToLower(scheme)) {
		port = ""
	}

	name = strings.ToLower(strings.Trim(name, "[]"))
	if !strings.Contains(name, ":") {
		ascii, err := idna.Lookup.ToASCII(name)
		if err != nil {
			return "", fmt.Errorf("invalid host %q: %w", host, err)
		}
		name = ascii
	}

	if port != "" {
		return net.JoinHostPort(name, port), nil
	}
	if strings.Contains(name, ":") {
		return "[" + name + "]", nil
	}
	return name, nil
}

func isDefaultPort(port, scheme string) bool {
	switch scheme {
	case "http":
		return port == "80"
	case "https":
		return port == "443"
	case "":
		return port == "80" || port == "443"
	}
	return false
}
