// ABOUTME: Small OS helpers shared by config, audio and notifier.

package platform

import (
	"os"
	"runtime"
)

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ExpandEnv expands $VAR, ${VAR} and Windows-style %VAR% references.
// Unknown variables are left untouched.
func ExpandEnv(s string) string {
	s = expandPercent(s)
	return os.Expand(s, func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return "${" + key + "}"
	})
}

func expandPercent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			out = append(out, s[i])
			continue
		}
		end := i + 1
		for end < len(s) && s[end] != '%' {
			end++
		}
		if end == len(s) || end == i+1 {
			out = append(out, s[i])
			continue
		}
		if v, ok := os.LookupEnv(s[i+1 : end]); ok {
			out = append(out, v...)
			i = end
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

// IsWindows reports whether the tool runs on Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
