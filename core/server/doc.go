// Package server holds configuration for the HTTP surface of the catalog.
//
// The server itself is assembled in the start command; this package only
// carries the settings (listen port, API key) so they can participate in the
// central configuration loading.
package server
