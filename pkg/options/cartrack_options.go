package options

import (
	"fmt"
	"net/url"

	"github.com/spf13/pflag"
)

var _ IOptions = (*CartrackOptions)(nil)

const (
	DefaultCartrackAPIURL    = "https://fleetapi-za.cartrack.com/rest"
	DefaultCartrackVehicleID = "CAA649529"
)

// CartrackOptions identifies the upstream fleet API and the single vehicle
// being tracked. The flag names map onto the CARTRACK_API_URL,
// CARTRACK_VEHICLE_ID and CARTRACK_AUTH_TOKEN environment variables.
type CartrackOptions struct {
	APIURL    string `json:"api-url" mapstructure:"api-url"`
	VehicleID string `json:"vehicle-id" mapstructure:"vehicle-id"`

	// AuthToken is sent verbatim in the Authorization header and never logged.
	AuthToken string `json:"-" mapstructure:"auth-token"`
}

// NewCartrackOptions creates a CartrackOptions with the public defaults.
// The auth token defaults to empty.
func NewCartrackOptions() *CartrackOptions {
	return &CartrackOptions{
		APIURL:    DefaultCartrackAPIURL,
		VehicleID: DefaultCartrackVehicleID,
	}
}

// Validate checks that the API URL is absolute and a vehicle is configured.
func (o *CartrackOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	u, err := url.Parse(o.APIURL)
	switch {
	case err != nil:
		errors = append(errors, fmt.Errorf("invalid --cartrack.api-url %q: %w", o.APIURL, err))
	case u.Scheme != "http" && u.Scheme != "https":
		errors = append(errors, fmt.Errorf("--cartrack.api-url %q must use http or https", o.APIURL))
	case u.Host == "":
		errors = append(errors, fmt.Errorf("--cartrack.api-url %q has no host", o.APIURL))
	}

	if o.VehicleID == "" {
		errors = append(errors, fmt.Errorf("--cartrack.vehicle-id must not be empty"))
	}

	return errors
}

// AddFlags adds flags for CartrackOptions to the specified FlagSet.
func (o *CartrackOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.APIURL, "cartrack.api-url", o.APIURL, "Base URL of the Cartrack fleet REST API.")
	fs.StringVar(&o.VehicleID, "cartrack.vehicle-id", o.VehicleID, "Identifier of the tracked vehicle.")
	fs.StringVar(&o.AuthToken, "cartrack.auth-token", o.AuthToken, "Value of the Authorization header sent to the Cartrack API.")
}
