package domain

// Algorithm represents the cryptographic algorithm used for encryption.
//
// All supported algorithms provide Authenticated Encryption with Associated Data (AEAD),
// ensuring both confidentiality and authenticity of encrypted data. The algorithm
// identifier is recorded on every persisted secret record for forward compatibility.
//
// Algorithm selection guidelines:
//   - Use AESGCM on modern CPUs with AES-NI hardware acceleration
//   - Use ChaCha20 on systems without AES-NI
//   - Both provide equivalent 256-bit security when used correctly
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	//
	// AES-GCM (Advanced Encryption Standard in Galois/Counter Mode) combines
	// AES encryption with GMAC authentication. It uses a 256-bit key and is the
	// default algorithm for tenant secret records.
	AESGCM Algorithm = "AES-256-GCM"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	//
	// ChaCha20-Poly1305 combines the ChaCha20 stream cipher with the Poly1305 MAC.
	// It is designed for high performance on platforms without AES hardware
	// acceleration and has a constant-time software implementation.
	ChaCha20 Algorithm = "ChaCha20-Poly1305"
)

const (
	// KeySize is the required size in bytes for all symmetric keys
	// (master key and DEKs): 32 bytes (256 bits).
	KeySize = 32

	// NonceSize is the AEAD nonce size in bytes (96 bits).
	NonceSize = 12

	// TagSize is the AEAD authentication tag size in bytes (128 bits).
	TagSize = 16
)
