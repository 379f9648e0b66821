package b

import "os"

const projectURL = "https://example.supabase.co"

func key() string {
	prefix := "eyJ"
	_ = "eyJhbGciOiJIUzI1NiJ9" // a single segment is not a key
	return prefix + os.Getenv("SUPABASE_SERVICE_ROLE_KEY") + projectURL
}
