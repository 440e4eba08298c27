// Quell is an in-process call-rate limiting toolkit.
//
// The quell CLI works with YAML limiter definitions:
//
//	# Validate a configuration file
//	quell validate --config quell.yaml
//
//	# Exercise a configured limiter and print the admission schedule
//	quell bench --config quell.yaml --limiter search --calls 20
//
//	# Show version information
//	quell version
package main

func main() {
	Execute()
}
