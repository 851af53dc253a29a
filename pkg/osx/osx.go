package osx

import "os"

// GetEnv returns the value of the environment variable if it is set,
// otherwise the given default.
func GetEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}
