// Package cli implements the interceptd command line.
//
// Commands:
//
//	interceptd validate PATH...             check fixture files
//	interceptd resolve -f PATH METHOD URL   resolve one call offline
//	interceptd serve -f PATH [--addr ADDR]  answer fixture routes over HTTP
//	interceptd verify SCENARIO...           run scenario files
//	interceptd new -o FILE [--url URL]      scaffold a fixture file
//	interceptd version                      print version information
package cli
