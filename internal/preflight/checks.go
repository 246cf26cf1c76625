package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"posecorpus/internal/deps"
	"posecorpus/internal/fileutil"
	"posecorpus/internal/pose"
)

// CheckDirectoryAccess verifies that the directory exists and is readable and
// writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	result := checkDirectory(name, path, unix.R_OK|unix.X_OK, "")
	if !result.Passed {
		return result
	}
	names, err := fileutil.ListEntries(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: list: %v)", path, err)}
	}
	result.Detail = fmt.Sprintf("%s (%d entries)", path, len(names))
	return result
}

// CheckDirectoryCreatable passes when path is a writable directory or does
// not exist yet but its closest existing parent is writable.
func CheckDirectoryCreatable(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckPoseType reports whether poses of the configured family can be loaded.
func CheckPoseType(value string) Result {
	const name = "Pose type"
	t, err := pose.ParseType(value)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := t.CheckSupported(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (not supported)", t)}
	}
	return Result{Name: name, Passed: true, Detail: string(t)}
}

// CheckBinary converts a dependency status into a result.
func CheckBinary(status deps.Status) Result {
	r := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
	switch {
	case status.Available:
		r.Detail = status.Path
	case status.Detail != "":
		r.Detail = status.Detail
	default:
		r.Detail = "unavailable"
	}
	return r
}
