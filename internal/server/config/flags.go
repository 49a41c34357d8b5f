package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/fibkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":1042")
//	-g string   gRPC health endpoint address, empty to disable
//	-s string   session token HMAC secret
//	-t int      session validity, minutes
//	-i int      expired session sweep interval, seconds
//	-secure     mark the session cookie Secure (use -secure=false for plain HTTP)
//	-u string   login username
//	-p string   login password
//	-h string   bcrypt hash of the login password (overrides -p)
//
// os.Args is first filtered with flagx.FilterArgs so the -c/-config flag
// handled by parseFile does not trip this flag set.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-s", "-t", "-i", "-u", "-p", "-h"}, "-secure")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run gRPC health server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	cleanupInterval := fs.Int("i", int(config.SessionCleanupInterval.Seconds()), "session cleanup interval (in seconds)")

	fs.BoolVar(&config.CookieSecure, "secure", config.CookieSecure, "secure session cookie")
	fs.StringVar(&config.AuthUsername, "u", config.AuthUsername, "login username")
	fs.StringVar(&config.AuthPassword, "p", config.AuthPassword, "login password")
	fs.StringVar(&config.AuthPasswordHash, "h", config.AuthPasswordHash, "bcrypt hash of login password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only explicit flags replace the durations, so "90s" from a file survives
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
		case "i":
			config.SessionCleanupInterval = time.Duration(*cleanupInterval) * time.Second
		}
	})
}
