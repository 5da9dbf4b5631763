// Package wslpath translates paths between Windows and WSL conventions.
// Drive-absolute Windows paths (C:\work\deploy.sh) map to WSL drive mounts
// (/mnt/c/work/deploy.sh) and back; every other path shape passes through
// with separator conversion only.
package wslpath

import "strings"

// mountRoot is where WSL exposes Windows drives. Custom automount roots
// (configured in /etc/wsl.conf) are not supported.
const mountRoot = "/mnt/"

// splitDrive splits a drive-absolute Windows path ("C:\work", "C:/work" or
// bare "C:") into its drive letter and the remainder after the colon.
// ok is false for every other shape, including drive-relative paths such as
// "C:work" and UNC paths.
func splitDrive(path string) (drive byte, rest string, ok bool) {
	if len(path) < 2 || path[1] != ':' {
		return 0, "", false
	}
	d := path[0]
	if (d < 'a' || d > 'z') && (d < 'A' || d > 'Z') {
		return 0, "", false
	}
	rest = path[2:]
	if rest != "" && rest[0] != '\\' && rest[0] != '/' {
		return 0, "", false
	}
	return d, rest, true
}

// IsDrivePath reports whether path is in drive-absolute Windows form.
func IsDrivePath(path string) bool {
	_, _, ok := splitDrive(path)
	return ok
}

// ToWSL converts a Windows path to its WSL equivalent. Drive-absolute paths
// become /mnt/<drive> paths with the drive letter lowercased; all other
// paths only have their backslashes converted to forward slashes.
//
//	C:\work\deploy.sh -> /mnt/c/work/deploy.sh
//	relative\sub      -> relative/sub
func ToWSL(path string) string {
	drive, rest, ok := splitDrive(path)
	if !ok {
		return strings.ReplaceAll(path, `\`, "/")
	}
	lower := drive
	if lower >= 'A' && lower <= 'Z' {
		lower += 'a' - 'A'
	}
	return mountRoot + string(lower) + strings.ReplaceAll(rest, `\`, "/")
}

// FromWSL converts a WSL drive-mount path back to Windows form with the
// drive letter uppercased. Paths outside /mnt/<drive> are returned
// unchanged, because they have no Windows-side equivalent.
//
//	/mnt/c/work/deploy.sh -> C:\work\deploy.sh
//	/home/user/deploy.sh  -> /home/user/deploy.sh
func FromWSL(path string) string {
	if !strings.HasPrefix(path, mountRoot) {
		return path
	}
	tail := path[len(mountRoot):]
	if tail == "" {
		return path
	}
	d := tail[0]
	if (d < 'a' || d > 'z') && (d < 'A' || d > 'Z') {
		return path
	}
	rest := tail[1:]
	if rest != "" && rest[0] != '/' {
		return path
	}
	if d >= 'a' && d <= 'z' {
		d -= 'a' - 'A'
	}
	if rest == "" || rest == "/" {
		return string(d) + `:\`
	}
	return string(d) + ":" + strings.ReplaceAll(rest, "/", `\`)
}
