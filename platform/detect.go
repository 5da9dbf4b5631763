package platform

import (
	"os"
	"runtime"
	"strings"
)

// osReleasePath is the kernel release marker consulted for the WSL
// signature. Microsoft kernels report strings like
// "5.15.167.4-microsoft-standard-WSL2". Overridable in tests.
var osReleasePath = "/proc/sys/kernel/osrelease"

// wslSignatures are the tokens that mark a kernel release string as WSL.
var wslSignatures = []string{"microsoft", "wsl"}

// Detect classifies the host the current process is running on. A WSL guest
// is reported as WSL, never folded into Linux. Hosts outside the supported
// set (e.g. macOS) are classified as Linux for routing purposes; no adapter
// reports Available there.
func Detect() Platform {
	if runtime.GOOS == "windows" {
		return Windows
	}
	if isWSL() {
		return WSL
	}
	return Linux
}

// isWSL reports whether the current process runs inside a WSL guest. The
// kernel release marker is authoritative; the WSL-specific environment
// variables are consulted only when the marker cannot be read.
func isWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	if data, err := os.ReadFile(osReleasePath); err == nil {
		release := strings.ToLower(string(data))
		for _, sig := range wslSignatures {
			if strings.Contains(release, sig) {
				return true
			}
		}
		return false
	}
	return os.Getenv("WSL_DISTRO_NAME") != "" || os.Getenv("WSL_INTEROP") != ""
}
