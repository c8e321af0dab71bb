// ABOUTME: Quota authorization contract with the external cost authority
// ABOUTME: Consulted before every metered backend call; a denial triggers failover
package backend

// Authorizer approves estimated token spend before a metered backend
// call. A false result is treated exactly like a backend failure.
type Authorizer interface {
	EstimateAndReserve(backendName string, estimatedTokens int) bool
}

// AuthorizerFunc adapts a plain function to the Authorizer interface
type AuthorizerFunc func(backendName string, estimatedTokens int) bool

func (f AuthorizerFunc) EstimateAndReserve(backendName string, estimatedTokens int) bool {
	return f(backendName, estimatedTokens)
}

// AllowAll returns an authorizer that approves every reservation.
// Used when no external cost authority is wired in.
func AllowAll() Authorizer {
	return AuthorizerFunc(func(string, int) bool { return true })
}
