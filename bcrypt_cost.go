//go:build !race

package auth

// passwordHashCost balances hash strength against login latency; bumping it
// only affects newly stored hashes.
func passwordHashCost() int {
	return 12
}
