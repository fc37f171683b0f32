// internal/version/version.go
package version

// Version is the semantic version stamped into --version output.
const Version = "0.1.0"
