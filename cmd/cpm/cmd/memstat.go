package cmd

import (
	"bufio"
	"os"
	"strings"
)

// vmSize returns the VmSize line from /proc/self/status, or "" if the
// file doesn't exist (non-Linux platforms, sandboxes, etc.) — grounded
// on cp5.cpp's memory_usage(), which reads the same line for the same
// best-effort diagnostic purpose.
func vmSize() string {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmSize") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
