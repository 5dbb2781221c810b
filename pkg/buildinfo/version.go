// Package buildinfo holds version information stamped in at build time:
//
//	go build -ldflags "-X github.com/matzehuels/sheetcalc/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/sheetcalc/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/sheetcalc/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/sheetcalc
package buildinfo

import "fmt"

// Set via -ldflags -X; unstamped builds report the defaults.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + Version + "\n" + fmt.Sprintf("commit: %s\nbuilt: %s\n", Commit, Date)
}
