package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u string   seed account username
//	-p string   seed account password
//	-l string   log level
//	-d string   PostgreSQL DSN
//
// Notes:
//   - os.Args is first filtered to the flags listed above with
//     flagx.FilterArgs, so the JSON layer's -c/-config does not collide.
//   - The token validity is accepted in minutes and converted to a
//     time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t", "-u", "-p", "-l", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.SeedUsername, "u", config.SeedUsername, "seed account username")
	fs.StringVar(&config.SeedPassword, "p", config.SeedPassword, "seed account password")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
