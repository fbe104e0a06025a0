package security

// PinHasher turns PINs into salted one-way hashes and checks them
type PinHasher interface {
	// Hash returns a salted hash of the PIN
	Hash(pin string) (string, error)

	// Verify reports whether pin matches hash.
	// A mismatch returns (false, nil); a malformed hash returns an error.
	Verify(pin, hash string) (bool, error)
}
