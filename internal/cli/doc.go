// Package cli implements the riskmcp command line.
//
// The command tree is:
//
//	riskmcp serve     start the SSE tool server
//	riskmcp tools     print the tool catalog
//	riskmcp version   print the version
//
// Configuration is layered: defaults, then TOML files given with --config
// (later files win), then RISKMCP_* environment variables, then flags.
// A .env file in the working directory is loaded into the environment
// before configuration is read.
package cli
