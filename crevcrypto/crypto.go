// Package crevcrypto provides the fixed cryptographic primitives the crev
// web-of-trust core is built on.
//
// Exposes:
//   - Sign / Verify       – Ed25519, 64-byte signatures over 32-byte keys.
//   - DeriveKey            – Argon2id password-based key derivation.
//   - Seal / Open          – XChaCha20-Poly1305 authenticated encryption.
//
// All crypto comes from the Go standard library (crypto/ed25519) or
// golang.org/x/crypto (argon2, chacha20poly1305); there is no BLS, TLS, or
// TLS-adjacent material here — the core never talks to a network.
package crevcrypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

//---------------------------------------------------------------------
// Sizes
//---------------------------------------------------------------------

const (
	PublicKeySize  = ed25519.PublicKeySize
	SecretKeySize  = ed25519.SeedSize // 32-byte seed; crev never persists the expanded 64-byte form
	SignatureSize  = ed25519.SignatureSize
	KDFKeySize     = 32
	SealNonceSize  = chacha20poly1305.NonceSizeX
	SealOverhead   = chacha20poly1305.Overhead
)

// PublicKey and SecretKey are the raw 32-byte Ed25519 key forms crev persists
// and transmits. SecretKey is the 32-byte seed, not the expanded 64-byte
// signing key ed25519.PrivateKey uses internally.
type PublicKey [PublicKeySize]byte
type SecretKey [SecretKeySize]byte

//---------------------------------------------------------------------
// Logger
//---------------------------------------------------------------------

var logger = log.New()

func init() {
	logger.SetOutput(io.Discard)
}

// SetLogger overrides the package logger used for crypto-level diagnostics.
// No secret material is ever passed to it.
func SetLogger(l *log.Logger) { logger = l }

//---------------------------------------------------------------------
// Errors
//---------------------------------------------------------------------

var (
	ErrBadSignature         = errors.New("crevcrypto: signature verification failed")
	ErrBadPassphrase        = errors.New("crevcrypto: passphrase authentication failed")
	ErrUnsupportedKdfVariant = errors.New("crevcrypto: unsupported kdf variant")
	ErrSealedTooShort        = errors.New("crevcrypto: sealed blob shorter than the authentication tag")
)

//---------------------------------------------------------------------
// Ed25519 keypair generation, sign, verify
//---------------------------------------------------------------------

// GenerateKeypair samples a fresh Ed25519 keypair using the system CSPRNG.
func GenerateKeypair() (PublicKey, SecretKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return PublicKey{}, SecretKey{}, err
	}
	var pk PublicKey
	var sk SecretKey
	copy(pk[:], pub)
	copy(sk[:], priv.Seed())
	return pk, sk, nil
}

// PublicKeyFromSecret recomputes the public key matching a secret key seed.
func PublicKeyFromSecret(sk SecretKey) PublicKey {
	priv := ed25519.NewKeyFromSeed(sk[:])
	var pk PublicKey
	copy(pk[:], priv.Public().(ed25519.PublicKey))
	return pk
}

// Sign signs msg with the Ed25519 secret key seed sk, returning a 64-byte
// signature.
func Sign(sk SecretKey, msg []byte) [SignatureSize]byte {
	priv := ed25519.NewKeyFromSeed(sk[:])
	var sig [SignatureSize]byte
	copy(sig[:], ed25519.Sign(priv, msg))
	return sig
}

// Verify reports whether sig is a valid Ed25519 signature over msg under pk.
func Verify(pk PublicKey, msg []byte, sig []byte) error {
	if len(sig) != SignatureSize {
		return ErrBadSignature
	}
	if !ed25519.Verify(pk[:], msg, sig) {
		return ErrBadSignature
	}
	return nil
}

//---------------------------------------------------------------------
// Argon2id key derivation
//---------------------------------------------------------------------

// KDFParams mirrors the on-disk `pass:` block of a LockedId (spec.md §6).
type KDFParams struct {
	Variant      string // always "argon2id"
	Version      uint32 // implementation version, not argon2's own version constant
	Iterations   uint32
	MemorySizeKB uint32
	Salt         [32]byte
}

// DefaultKDFParams returns the lock() defaults from spec.md §4.2. Callers may
// raise Iterations/MemorySizeKB; they must never be lowered below these for
// newly-created identities.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Variant:      "argon2id",
		Version:      1,
		Iterations:   192,
		MemorySizeKB: 4096,
	}
}

// DeriveKey runs Argon2id over passphrase with the given parameters,
// producing a 32-byte symmetric key suitable for Seal/Open.
func DeriveKey(passphrase string, p KDFParams) ([KDFKeySize]byte, error) {
	if p.Variant != "argon2id" {
		return [KDFKeySize]byte{}, ErrUnsupportedKdfVariant
	}
	raw := argon2.IDKey([]byte(passphrase), p.Salt[:], p.Iterations, p.MemorySizeKB, 1, KDFKeySize)
	var out [KDFKeySize]byte
	copy(out[:], raw)
	return out, nil
}

// RandomSalt samples a fresh 32-byte KDF salt.
func RandomSalt() ([32]byte, error) {
	var salt [32]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return salt, err
	}
	return salt, nil
}

//---------------------------------------------------------------------
// Sealing – XChaCha20-Poly1305
//---------------------------------------------------------------------

// Seal encrypts plaintext under key, sampling a fresh 24-byte nonce. It
// returns the nonce and ciphertext||tag separately so callers can persist
// them in the LockedId's distinct `seal-nonce` and `sealed-secret-key`
// fields (spec.md §6).
func Seal(key [KDFKeySize]byte, plaintext []byte) (nonce [SealNonceSize]byte, sealed []byte, err error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nonce, nil, err
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return nonce, nil, err
	}
	sealed = aead.Seal(nil, nonce[:], plaintext, nil)
	return nonce, sealed, nil
}

// Open authenticates and decrypts a blob produced by Seal. It returns
// ErrBadPassphrase on tag mismatch, never a lower-level AEAD error, so
// callers never leak why decryption failed.
func Open(key [KDFKeySize]byte, nonce [SealNonceSize]byte, sealed []byte) ([]byte, error) {
	if len(sealed) < SealOverhead {
		return nil, ErrSealedTooShort
	}
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce[:], sealed, nil)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return pt, nil
}

// Wipe zeroes a byte slice in place. Best-effort: the Go GC may have already
// copied the backing array elsewhere, but this is the same discipline the
// rest of the pack uses for secret material.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
