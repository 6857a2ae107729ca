package config

import (
	"flag"
	"os"
)

func commandLineArgs() []string {
	return os.Args[1:]
}

// parseFlags overlays command-line flags onto config.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   Postgres DSN
//	-s string   JWT signing secret
//	-t duration session token lifetime (e.g. "24h")
//	-l string   log level
//	-admin-token  require an admin bearer token on admin routes
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("ledgerhub", flag.ContinueOnError)
	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT secret key")
	fs.DurationVar(&config.TokenTTL, "t", config.TokenTTL, "session token validity")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.RequireAdminToken, "admin-token", config.RequireAdminToken, "require admin token on admin routes")
	return fs.Parse(args)
}
