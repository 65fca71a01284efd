// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// StrengthResult lists every violated password rule. Valid is true only when Errors is empty.
type StrengthResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// PasswordHasher defines the interface for password hashing and verification.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash. It never fails for a wrong password, it returns false.
	Check(password, hash string) bool

	// ValidateStrength checks the password policy and reports all violations at once.
	ValidateStrength(password string) StrengthResult
}
