//go:build !windows

package platform

// windowsOSVersion is only answerable on a Windows host.
func windowsOSVersion() string { return "" }
