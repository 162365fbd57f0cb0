package instance

import "os"

// GetID names the running process in logs. DYNO is set by the platform,
// INSTANCE_ID by everything else.
func GetID() string {
	for _, key := range []string{"DYNO", "INSTANCE_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
