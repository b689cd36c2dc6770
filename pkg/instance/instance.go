package instance

import "os"

// GetID identifies this process in log output. Deployments set
// PRINTLINK_INSTANCE_ID; local runs fall back to the hostname.
func GetID() string {
	if id := os.Getenv("PRINTLINK_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "printlink-0"
}
