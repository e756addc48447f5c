package redis

import "fmt"

// Key prefix for all client data
const keyPrefix = "jz"

// credentialKey returns the Redis key holding the credential for an origin
func credentialKey(origin string) string {
	return fmt.Sprintf("%s:%s:credential", keyPrefix, origin)
}
