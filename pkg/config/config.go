// Package config loads the aclcored daemon's TOML configuration: where to
// find the directory server, how the compiled ACLs get cached, and where
// and in which format logging is written. It follows the same load idiom the rest of
// this codebase uses for untyped configuration: defaults first, then a
// generic decode, then a typed mapstructure pass.
package config

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/heracles-ldap/aclcore/pkg/ldaprows"
)

// Log holds logger settings.
type Log struct {
	Output string `default:"stderr"  mapstructure:"output"`
	Mode   string `default:"console" mapstructure:"mode"`
}

// Directory holds the LDAP connection and row-loading settings.
type Directory struct {
	Hostname         string `default:"localhost" mapstructure:"hostname"`
	Port             int    `default:"389"        mapstructure:"port"`
	BindDN           string `mapstructure:"bind_dn"`
	BindPassword     string `mapstructure:"bind_password"`
	PolicyBaseDN     string `mapstructure:"policy_base_dn"`
	AssignmentFilter string `default:"(&(objectClass=aclAssignment)(aclPrincipal={{.UserDN | lower}}))" mapstructure:"assignment_filter"`
}

// Config is the daemon's top-level configuration. Cache is left as an
// untyped options map, the same pattern every pluggable backend in this
// codebase uses: aclcache.New decodes it itself via mapstructure.
type Config struct {
	Log       Log                    `mapstructure:"log"`
	Directory Directory              `mapstructure:"directory"`
	Cache     map[string]interface{} `mapstructure:"cache"`
}

// Load parses TOML from r into a Config, applying field defaults first.
func Load(r io.Reader) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, errors.Wrap(err, "config: error applying defaults")
	}

	var raw map[string]interface{}
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "config: error decoding toml data")
	}
	if err := mapstructure.Decode(raw, &c); err != nil {
		return nil, errors.Wrap(err, "config: error applying configuration")
	}
	return &c, nil
}

// RowLoaderConfig projects the directory settings into the shape
// pkg/ldaprows expects.
func (c *Config) RowLoaderConfig() ldaprows.Config {
	return ldaprows.Config{
		PolicyBaseDN:     c.Directory.PolicyBaseDN,
		AssignmentFilter: c.Directory.AssignmentFilter,
	}
}
