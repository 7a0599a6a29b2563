// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

import "fmt"

// Build metadata, stamped with -ldflags "-X" at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// VersionLine is the one-line form printed by "sagestream version --short"
// and used as the root command's version string.
func VersionLine() string {
	return fmt.Sprintf("sagestream %s (%s)", Version, Sha)
}
