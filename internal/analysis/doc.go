// Package analysis produces property risk reports for a location.
//
// A Service validates and normalizes the requested location, serves repeated
// requests from an expiring LRU cache, and asks an Analyzer for fresh
// reports. The remote Client talks to an external analyzer over HTTP; the
// Local analyzer derives a deterministic report from the location text and
// backs the remote one when it is unavailable.
package analysis
