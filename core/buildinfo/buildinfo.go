// Package buildinfo carries version metadata stamped at build time:
//
//	-X 'github.com/m3rciful/p2pbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/p2pbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/p2pbot/core/buildinfo.Date=2026-08-29T12:00:00Z'
//
// The defaults identify a local development build.
package buildinfo

var (
	// Version is the semantic version or tag of the build.
	Version = "dev"
	// Commit is the source revision the binary was built from.
	Commit = "local"
	// Date is the build timestamp in RFC3339 format.
	Date = ""
)
