// Package services contains the core business logic, wired to the
// outside world only through driven ports. Services implement the
// driving port interfaces the CLI consumes.
package services
