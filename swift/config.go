// Package swift provides an OpenStack Swift / Rackspace Cloud Files
// implementation of the core.Backend interface.
package swift

import (
	"regexp"
	"strings"

	"github.com/ncw/swift/v2/rs"

	"github.com/jmgilman/objfs/errors"
)

// Rackspace identity endpoints by account location.
const (
	EndpointUS = "us"
	EndpointUK = "uk"

	USIdentityURL = "https://identity.api.rackspacecloud.com/v2.0/"
	UKIdentityURL = "https://lon.identity.api.rackspacecloud.com/v2.0/"
)

// Regions lists the Cloud Files regions accepted by Config.
var Regions = []string{"DFW", "ORD", "IAD", "LON", "HKG", "SYD"}

// maxContainerLength is the Swift limit on container names in bytes.
const maxContainerLength = 256

var apiKeyPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// Config holds Swift backend configuration.
type Config struct {
	// Endpoint selects the identity service: "us" or "uk" (default: "uk")
	Endpoint string

	// Region is the Cloud Files region, e.g. "LON" (default: "LON")
	Region string

	// Username is the account user name
	Username string

	// APIKey is the account API key (32 lowercase hex digits)
	APIKey string

	// Container is the container holding all objects
	Container string

	// AuthURL overrides the identity URL derived from Endpoint
	AuthURL string

	// TempURLKey signs temporary URLs. Without it, TempURL is unsupported.
	TempURLKey string

	// DisableCDN skips CDN lookups for public URLs
	DisableCDN bool

	// Connection is an optional pre-configured connection.
	// If provided, Endpoint/Region/Username/APIKey are ignored
	Connection *rs.RsConnection
}

// validate checks the configuration and fills in defaults.
func (c *Config) validate() error {
	if err := validateContainer(c.Container); err != nil {
		return err
	}

	// If Connection is provided, we're done (other fields are ignored)
	if c.Connection != nil {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Endpoint)) {
	case "", EndpointUK:
		c.Endpoint = EndpointUK
	case EndpointUS:
		c.Endpoint = EndpointUS
	default:
		return invalid("endpoint", c.Endpoint, "endpoint must be %q or %q", EndpointUS, EndpointUK)
	}

	region := strings.ToUpper(strings.TrimSpace(c.Region))
	if region == "" {
		region = "LON"
	}
	if !isRegion(region) {
		return invalid("region", c.Region, "region must be one of %s", strings.Join(Regions, ", "))
	}
	c.Region = region

	if strings.TrimSpace(c.Username) == "" {
		return invalid("username", c.Username, "username is required")
	}
	if !apiKeyPattern.MatchString(c.APIKey) {
		return invalid("api_key", "<redacted>", "api key must be 32 lowercase hexadecimal characters")
	}
	return nil
}

// identityURL returns the identity service URL.
func (c *Config) identityURL() string {
	if c.AuthURL != "" {
		return c.AuthURL
	}
	if c.Endpoint == EndpointUS {
		return USIdentityURL
	}
	return UKIdentityURL
}

func validateContainer(name string) error {
	switch {
	case name == "":
		return invalid("container", name, "container is required")
	case len(name) > maxContainerLength:
		return invalid("container", name, "container name exceeds %d bytes", maxContainerLength)
	case strings.Contains(name, "/"):
		return invalid("container", name, "container name must not contain '/'")
	}
	return nil
}

func isRegion(r string) bool {
	for _, known := range Regions {
		if r == known {
			return true
		}
	}
	return false
}

func invalid(field, value, format string, args ...interface{}) error {
	return errors.WithContextMap(
		errors.Newf(errors.CodeInvalidConfig, format, args...),
		map[string]interface{}{"field": field, "value": value},
	)
}
