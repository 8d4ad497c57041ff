package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/trainingportal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path of the local SQLite database
//	-m string   mirror kind: none, memory, http or firestore
//	-u string   base URL of the mirror server
//	-g string   host:port of the mirror gRPC health endpoint
//	-p string   Firestore project id
//	-b string   backup directory
//	-l string   log level: debug, info, warn or error
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-m", "-u", "-g", "-p", "-b", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.MirrorKind, "m", cfg.MirrorKind, "mirror kind (none, memory, http, firestore)")
	fs.StringVar(&cfg.MirrorURL, "u", cfg.MirrorURL, "mirror server base URL")
	fs.StringVar(&cfg.MirrorHealthAddr, "g", cfg.MirrorHealthAddr, "mirror gRPC health address")
	fs.StringVar(&cfg.FirestoreProject, "p", cfg.FirestoreProject, "Firestore project id")
	fs.StringVar(&cfg.BackupDir, "b", cfg.BackupDir, "backup directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
