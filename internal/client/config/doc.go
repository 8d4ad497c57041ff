// Package config loads runtime configuration for the portal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   local database path
//	-m string   mirror kind (none, memory, http, firestore)
//	-u string   mirror server base URL
//	-g string   mirror gRPC health address
//	-p string   Firestore project id
//	-b string   backup directory
//	-l string   log level
//
// # JSON schema
//
// Durations are timex.Duration values, so "5s" and 5000000000 are equivalent.
// Every key is optional:
//
//	{
//	  "db_path": "portal.db",
//	  "mirror": {"kind": "http", "url": "http://127.0.0.1:8080", "health_addr": "127.0.0.1:50051"},
//	  "firestore": {"project": "my-project", "root": "portal", "credentials": "sa.json"},
//	  "probe_timeout": "5s",
//	  "network_timeout": "10s",
//	  "validation": {"min_duration": 15, "max_duration": 180, "password_min_length": 6},
//	  "backup": {"dir": "backups", "max_backups": 10, "passphrase": "",
//	             "s3": {"endpoint": "http://127.0.0.1:9000", "bucket": "portal", "access_key": "", "secret_key": ""}},
//	  "log_level": "warn"
//	}
//
// This package does not read environment variables; the AWS SDK still picks
// up its usual variables when no S3 keys are configured.
package config
