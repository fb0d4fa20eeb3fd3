package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// StateDirEnv overrides the state directory location.
const StateDirEnv = "MACH_STATE_DIR"

// TopSrcDirEnv overrides source tree detection.
const TopSrcDirEnv = "MACH_TOPSRCDIR"

// RootMarker is the file marking the top of a source tree.
const RootMarker = ".machroot"

const stateDirName = ".mach"

// StateDir returns the directory holding mach's settings, error reports
// and execution environments, creating it when needed.
//   - $MACH_STATE_DIR when set
//   - Windows: %LOCALAPPDATA%\mach
//   - elsewhere: ~/.mach
func StateDir() string {
	return StateDirFrom(os.Getenv)
}

// StateDirFrom is StateDir reading the environment through getenv.
func StateDirFrom(getenv func(string) string) string {
	path := stateDir(getenv)

	// Use restrictive permissions for application state
	_ = os.MkdirAll(path, 0700)

	return path
}

func stateDir(getenv func(string) string) string {
	if dir := strings.TrimSpace(getenv(StateDirEnv)); dir != "" {
		return filepath.Clean(dir)
	}

	if runtime.GOOS == "windows" {
		if base := getenv("LOCALAPPDATA"); base != "" {
			return filepath.Join(base, "mach")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return stateDirName
	}
	return filepath.Join(home, stateDirName)
}

// SettingsFilePath returns the path of the user settings file.
func SettingsFilePath(stateDir string) string {
	return filepath.Join(stateDir, "machrc")
}

// ReportsDBPath returns the path of the error report database.
func ReportsDBPath(stateDir string) string {
	return filepath.Join(stateDir, "reports.db")
}

// EnvironmentsDir returns the directory holding execution environments.
func EnvironmentsDir(stateDir string) string {
	return filepath.Join(stateDir, "_virtualenvs")
}

// ProgramDir returns the directory containing the running executable,
// falling back to the working directory.
func ProgramDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// FindTopSrcDir returns $MACH_TOPSRCDIR, or the nearest ancestor of start
// containing RootMarker, or "" outside a source tree.
func FindTopSrcDir(start string, getenv func(string) string) string {
	if dir := strings.TrimSpace(getenv(TopSrcDirEnv)); dir != "" {
		return filepath.Clean(dir)
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, RootMarker)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
