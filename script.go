package shipcheck

import (
	"path/filepath"
	"strings"

	"github.com/shipcheck/shipcheck/platform"
)

// Script describes a single delivery script to execute.
// It is an alias for platform.Script.
type Script = platform.Script

// ScriptType classifies a delivery script by its interpreter family.
// It is an alias for platform.ScriptType.
type ScriptType = platform.ScriptType

// Platform identifies an execution environment.
// It is an alias for platform.Platform.
type Platform = platform.Platform

// Script types, re-exported for callers that never import platform directly.
const (
	Batch      = platform.Batch
	PowerShell = platform.PowerShell
	Shell      = platform.Shell
	Python     = platform.Python
)

// Platforms, re-exported for callers that never import platform directly.
const (
	Windows = platform.Windows
	WSL     = platform.WSL
	Linux   = platform.Linux
)

// scriptExtensions maps lowercase file extensions to script types.
var scriptExtensions = map[string]ScriptType{
	".bat": Batch,
	".cmd": Batch,
	".ps1": PowerShell,
	".sh":  Shell,
	".py":  Python,
}

// DetectScriptType classifies a script by its file extension. The comparison
// is case-insensitive, so DEPLOY.BAT and deploy.bat are equivalent. Unknown
// extensions return an *UnknownScriptTypeError.
func DetectScriptType(path string) (ScriptType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := scriptExtensions[ext]; ok {
		return t, nil
	}
	return "", &UnknownScriptTypeError{Path: path}
}

// NewScript classifies path by extension and returns the resulting Script.
func NewScript(path string) (Script, error) {
	t, err := DetectScriptType(path)
	if err != nil {
		return Script{}, err
	}
	return Script{Path: path, Type: t}, nil
}
