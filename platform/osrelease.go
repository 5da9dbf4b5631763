package platform

import (
	"context"
	"os"
	"os/exec"
	"strings"
)

// Files consulted for the OS self-description on Linux and WSL guests.
// Overridable in tests.
var (
	osReleaseFile  = "/etc/os-release"
	lsbReleaseFile = "/etc/lsb-release"
)

// unixOSVersion derives the OS self-description for Linux and WSL guests:
// /etc/os-release PRETTY_NAME, then /etc/lsb-release DISTRIB_DESCRIPTION,
// then the output of `uname -sr`.
func unixOSVersion(ctx context.Context) string {
	if data, err := os.ReadFile(osReleaseFile); err == nil {
		if v := releaseField(string(data), "PRETTY_NAME"); v != "" {
			return v
		}
	}
	if data, err := os.ReadFile(lsbReleaseFile); err == nil {
		if v := releaseField(string(data), "DISTRIB_DESCRIPTION"); v != "" {
			return v
		}
	}
	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	if out, err := exec.CommandContext(probeCtx, "uname", "-sr").Output(); err == nil {
		return firstLine(string(out))
	}
	return ""
}

// releaseField extracts a KEY=value entry from os-release style data,
// stripping surrounding quotes.
func releaseField(data, key string) string {
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, key+"=") {
			continue
		}
		return strings.Trim(line[len(key)+1:], `"'`)
	}
	return ""
}
