package options

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/util/validation"
)

// IOptions is implemented by every option group in this package.
type IOptions interface {
	// Validate checks the option values and returns every problem found.
	Validate() []error

	// AddFlags registers the option group's flags on fs.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// ValidateAddress checks that addr is a host:port pair with a usable port.
// An empty host (":8000") binds every interface and is accepted.
func ValidateAddress(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}

	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port %q in address %q: %w", port, addr, err)
	}
	if msgs := validation.IsValidPortNum(p); len(msgs) > 0 {
		return fmt.Errorf("invalid port in address %q: %s", addr, msgs[0])
	}

	if host != "" && net.ParseIP(host) == nil {
		if msgs := validation.IsDNS1123Subdomain(host); len(msgs) > 0 {
			return fmt.Errorf("invalid host %q in address %q: %v", host, addr, msgs)
		}
	}

	return nil
}
