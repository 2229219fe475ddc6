package cli

import (
	"context"
	"os"

	"github.com/matzehuels/karmyc/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version.
// It overrides the ldflags defaults in buildinfo, for callers that embed
// the CLI in their own binary.
func SetVersion(v, c, d string) {
	buildinfo.Version = v
	buildinfo.Commit = c
	buildinfo.Date = d
}

// Execute runs the karmyc CLI on os.Args, logging to stderr.
func Execute(ctx context.Context) error {
	return New(os.Stderr, LogInfo).RootCommand().ExecuteContext(ctx)
}
