// Package aclcache provides an external, process-local cache for compiled
// acl.UserAcl values, keyed by principal DN. The compiled value is a pure,
// immutable value (see pkg/acl), so caching it by pointer across requests
// needs no synchronization beyond the cache's own bookkeeping; this package
// exists purely to avoid recompiling a principal's rule set on every bind.
package aclcache

import (
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/heracles-ldap/aclcore/pkg/acl"
)

// Config controls the size and TTL of the cache.
type Config struct {
	// Size is the maximum number of compiled UserAcl values held at once.
	Size int `mapstructure:"size"`
	// ExpirationSeconds is how long an entry stays valid after being set.
	// Zero (or unset) selects the default of 300 seconds; expiration cannot
	// be disabled.
	ExpirationSeconds int `mapstructure:"expiration"`
}

func (c *Config) init() {
	if c.Size == 0 {
		c.Size = 10000
	}
	if c.ExpirationSeconds == 0 {
		c.ExpirationSeconds = 300
	}
}

// Cache is an LRU cache of compiled UserAcl values.
type Cache struct {
	config *Config
	cache  gcache.Cache
}

// New builds a Cache from an untyped configuration map, the same pattern
// every pluggable backend in this codebase uses for its options.
func New(conf map[string]interface{}) (*Cache, error) {
	c := &Config{}
	if err := mapstructure.Decode(conf, c); err != nil {
		return nil, errors.Wrap(err, "aclcache: error decoding config")
	}
	c.init()

	return &Cache{
		config: c,
		cache:  gcache.New(c.Size).LRU().Expiration(time.Duration(c.ExpirationSeconds) * time.Second).Build(),
	}, nil
}

func key(userDN string) string {
	return strings.ToLower(userDN)
}

// Get returns the cached UserAcl for userDN, or nil if absent or expired.
func (c *Cache) Get(userDN string) *acl.UserAcl {
	v, err := c.cache.Get(key(userDN))
	if err != nil {
		return nil
	}
	u, ok := v.(*acl.UserAcl)
	if !ok {
		return nil
	}
	return u
}

// Set stores a freshly compiled UserAcl, replacing any prior entry for the
// same principal.
func (c *Cache) Set(u *acl.UserAcl) error {
	return c.cache.Set(key(u.UserDN), u)
}

// Invalidate removes any cached entry for userDN, for use when a
// principal's assignments or policies change and the next check must see
// the new rules.
func (c *Cache) Invalidate(userDN string) {
	c.cache.Remove(key(userDN))
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	return c.cache.Len(true)
}
