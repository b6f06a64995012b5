// Command aclcored is a reference host process for the access-control
// core: it loads its configuration, connects to the directory server,
// compiles one principal's rows into a UserAcl, and prints that principal's
// effective permissions on a target DN. It exists to exercise the whole stack end to end;
// a real deployment would embed pkg/acl, pkg/aclcache and pkg/ldaprows
// behind its own bind/search service instead of shelling out like this.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"os"

	"github.com/go-ldap/ldap/v3"

	"github.com/heracles-ldap/aclcore/pkg/acl"
	"github.com/heracles-ldap/aclcore/pkg/aclcache"
	"github.com/heracles-ldap/aclcore/pkg/config"
	"github.com/heracles-ldap/aclcore/pkg/ldaprows"
	"github.com/heracles-ldap/aclcore/pkg/log"
)

var (
	configFlag  = flag.String("c", "/etc/aclcored/aclcored.toml", "set configuration file")
	userFlag    = flag.String("user", "", "principal DN to compile and check")
	targetFlag  = flag.String("target", "", "target DN to evaluate the check against")
	versionFlag = flag.Bool("version", false, "show version and exit")
)

// version is set at build time via -ldflags.
var version = "dev"

var mainLog = log.New("aclcored")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(version)
		return
	}

	if err := run(); err != nil {
		mainLog.Error(context.Background(), err)
		os.Exit(1)
	}
}

func run() error {
	log.Enable("aclcored")
	log.Enable("acl")
	log.Enable("ldaprows")

	f, err := os.Open(*configFlag)
	if err != nil {
		return fmt.Errorf("aclcored: opening config: %w", err)
	}
	defer f.Close()

	cfg, err := config.Load(f)
	if err != nil {
		return fmt.Errorf("aclcored: loading config: %w", err)
	}
	log.Mode = cfg.Log.Mode

	conn, err := dial(cfg.Directory)
	if err != nil {
		return fmt.Errorf("aclcored: connecting to directory: %w", err)
	}
	defer conn.Close()

	loader, err := ldaprows.New(conn, cfg.RowLoaderConfig())
	if err != nil {
		return fmt.Errorf("aclcored: building row loader: %w", err)
	}

	cache, err := aclcache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("aclcored: building cache: %w", err)
	}

	ctx := context.Background()

	userAcl := cache.Get(*userFlag)
	if userAcl == nil {
		rows, err := loader.LoadRows(ctx, *userFlag)
		if err != nil {
			return fmt.Errorf("aclcored: loading rows for %s: %w", *userFlag, err)
		}
		userAcl = acl.Compile(*userFlag, rows)
		if err := cache.Set(userAcl); err != nil {
			mainLog.Error(ctx, fmt.Errorf("aclcored: caching compiled acl: %w", err))
		}
	}

	eff := userAcl.EffectivePermissions(*targetFlag)
	fmt.Printf("effective permissions for %s on %s: %s\n", *userFlag, *targetFlag, eff)
	return nil
}

func dial(c config.Directory) (*ldap.Conn, error) {
	addr := fmt.Sprintf("%s:%d", c.Hostname, c.Port)
	conn, err := ldap.DialURL("ldap://" + addr)
	if err != nil {
		return nil, err
	}
	if c.Port == 636 {
		if err := conn.StartTLS(&tls.Config{ServerName: c.Hostname}); err != nil {
			conn.Close()
			return nil, err
		}
	}
	if c.BindDN != "" {
		if err := conn.Bind(c.BindDN, c.BindPassword); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}
