package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*CorsOptions)(nil)

// CorsOptions controls the cross-origin policy applied to browser callers.
// The defaults permit every origin, method and header.
type CorsOptions struct {
	AllowedOrigins   []string `json:"allowed-origins" mapstructure:"allowed-origins"`
	AllowedMethods   []string `json:"allowed-methods" mapstructure:"allowed-methods"`
	AllowedHeaders   []string `json:"allowed-headers" mapstructure:"allowed-headers"`
	AllowCredentials bool     `json:"allow-credentials" mapstructure:"allow-credentials"`
}

// NewCorsOptions creates a permissive CorsOptions.
func NewCorsOptions() *CorsOptions {
	return &CorsOptions{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"*"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}

// Validate rejects an empty origin list, which would block every browser caller.
func (o *CorsOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if len(o.AllowedOrigins) == 0 {
		errors = append(errors, fmt.Errorf("--cors.allowed-origins must list at least one origin"))
	}

	return errors
}

// AddFlags adds flags for CorsOptions to the specified FlagSet.
func (o *CorsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.AllowedOrigins, "cors.allowed-origins", o.AllowedOrigins, "Origins allowed to call the API ('*' for any).")
	fs.StringSliceVar(&o.AllowedMethods, "cors.allowed-methods", o.AllowedMethods, "HTTP methods allowed for cross-origin calls ('*' for any).")
	fs.StringSliceVar(&o.AllowedHeaders, "cors.allowed-headers", o.AllowedHeaders, "Request headers allowed for cross-origin calls ('*' for any).")
	fs.BoolVar(&o.AllowCredentials, "cors.allow-credentials", o.AllowCredentials, "Allow cookies and credentials on cross-origin calls.")
}
