// Package config loads runtime configuration for the gophauth CLI.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Short command-line flags -a, -t, -p, -i and -l.
//
// Example file:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "12s",
//	  "phone_verification_timeout": "60s",
//	  "online_check_interval": "10s",
//	  "log_level": "info"
//	}
package config
