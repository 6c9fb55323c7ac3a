// File: cmd/schedbench/env.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"os"
	"strconv"
	"strings"
)

const envPrefix = "SCHEDBENCH_"

// envKey maps a flag name to its environment variable, e.g. "log-level" to
// SCHEDBENCH_LOG_LEVEL.
func envKey(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func envOr(name, def string) string {
	if v := os.Getenv(envKey(name)); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(envKey(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envBool accepts everything strconv.ParseBool does plus yes/no and on/off.
func envBool(name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(envKey(name))))
	switch v {
	case "":
		return def
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}
