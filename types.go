package auth

import (
	"fmt"
	"time"
)

// Logger is the minimal logging contract the package depends on. The default
// implementation writes to stdout; hosts inject their own via WithLogger.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options. Hosts bind it to their own configuration system.
type Config interface {
	// GetSigningKey returns the symmetric JWT signing key. Empty is a fatal
	// construction error, never a per-request one.
	GetSigningKey() string
	// GetTokenExpiration returns the bearer token TTL in minutes.
	GetTokenExpiration() int
	GetIssuer() string
	// GetResetTokenTTL returns how long a recovery token stays redeemable.
	// Zero or negative falls back to ResetTokenTTL.
	GetResetTokenTTL() time.Duration
}

// PasswordAuthenticator hashes and verifies passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
