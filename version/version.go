package version

// Version is the semantic version of this build.
// Overwritten at build time via -ldflags.
var Version = "dev"

// GitCommit is the git commit hash of this build.
var GitCommit = "none"

// FullVersion combines version and commit for display.
var FullVersion = Version + " (" + GitCommit + ")"
