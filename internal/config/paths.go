package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDirName = "voxgate"

// DefaultConfigPath returns where the server looks for the named config
// file. VOXGATE_CONFIG_DIR overrides the per-OS location outright.
func DefaultConfigPath(name string) string {
	if dir := os.Getenv("VOXGATE_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	home, _ := os.UserHomeDir()
	return ResolveConfigPath(runtime.GOOS, home, os.Getenv("ProgramData"), name)
}

// ResolveConfigPath builds the per-OS config file location. Split out
// from DefaultConfigPath so tests can pin the OS and base directories.
func ResolveConfigPath(goos, home, programData, name string) string {
	return filepath.Join(configDir(goos, home, programData), name)
}

func configDir(goos, home, programData string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDirName)
	case "windows":
		if programData == "" {
			programData = "C:/ProgramData"
		}
		return filepath.Join(strings.TrimRight(programData, "\\/"), appDirName)
	default:
		return filepath.Join("/etc", appDirName)
	}
}
