// Package buildinfo carries release metadata stamped at link time, e.g.
//
//	go build -ldflags "-X github.com/m3rciful/paybot/core/buildinfo.Version=v1.2.0 \
//	  -X github.com/m3rciful/paybot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/paybot/core/buildinfo.Date=$(date -u +%FT%TZ)" ./cmd/paybot
package buildinfo

var (
	Version = "dev"
	Commit  = "local"
	// Date is RFC3339, empty for local builds.
	Date = ""
)

// Release is the Sentry release name: "paybot@<version>".
func Release() string {
	return "paybot@" + Version
}
