package common

// Set at build time with -ldflags "-X tarediiran-industries.com/trainbot/internal/common.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
)
