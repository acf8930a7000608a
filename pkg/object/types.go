package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// HashLen is the length of a hex-encoded digest.
const HashLen = 64

// Valid reports whether h looks like a digest: 64 lowercase hex characters.
// Anything else is never used as an object file name.
func (h Hash) Valid() bool {
	if len(h) != HashLen {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Short returns the first 8 characters of h.
func (h Hash) Short() string {
	if len(h) > 8 {
		return string(h[:8])
	}
	return string(h)
}

func (h Hash) String() string { return string(h) }
