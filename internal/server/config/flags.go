package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/flagx"
)

// parseFlags populates Config from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-m string   storage kind: postgres or memory
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      device token validity, hours
//	-l string   log level
//
// Token validity is given in whole hours and converted to a time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-m", "-d", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run the document API")
	fs.StringVar(&config.HealthAddr, "g", config.HealthAddr, "address and port to run the gRPC health service")
	fs.StringVar(&config.StorageKind, "m", config.StorageKind, "storage kind (postgres, memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidity.Hours()), "device token validity (in hours)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidity = time.Duration(*tokenValidity) * time.Hour
}
