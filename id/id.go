// Package id implements crev's identity model: the public PubId, the
// secret-holding OwnId, and the at-rest LockedId (spec.md §4.2).
//
// Import hygiene: id depends only on crevcrypto, internal/b64url, yaml.v3,
// logrus and the standard library — it does NOT import proof or proofdb, keeping key material at the lowest
// tier of the module, the same discipline the teacher's wallet package
// documents ("wallet depends only on common + utility... to stay at the
// lowest tier").
package id

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/womingyoutian/crev/crevcrypto"
	"github.com/womingyoutian/crev/internal/b64url"
)

//---------------------------------------------------------------------
// Logger
//---------------------------------------------------------------------

var logger = log.New()

func init() {
	logger.SetOutput(io.Discard)
}

// SetLogger overrides the package logger used for identity lifecycle
// diagnostics (generation, lock, unlock). No secret material is ever logged.
func SetLogger(l *log.Logger) { logger = l }

//---------------------------------------------------------------------
// Id
//---------------------------------------------------------------------

// IDType identifies the identity scheme. crev only defines one.
const IDType = "crev"

// Id is an opaque 32-byte public-key value. It is comparable and usable
// directly as a map key — Go's built-in array equality and hashing make the
// manual Hash implementation the Rust original needed unnecessary.
type Id [crevcrypto.PublicKeySize]byte

// String renders the id as the short base64url-without-padding textual form.
func (i Id) String() string { return b64url.Encode(i[:]) }

// ParseId decodes a base64url-without-padding string into an Id. It fails if
// the decoded value is not exactly 32 bytes (spec.md §4.3 step 4).
func ParseId(s string) (Id, error) {
	raw, err := b64url.Decode(s)
	if err != nil {
		return Id{}, fmt.Errorf("id: decode: %w", err)
	}
	if len(raw) != crevcrypto.PublicKeySize {
		return Id{}, fmt.Errorf("id: expected %d bytes, got %d", crevcrypto.PublicKeySize, len(raw))
	}
	var out Id
	copy(out[:], raw)
	return out, nil
}

//---------------------------------------------------------------------
// PubId
//---------------------------------------------------------------------

// PubId is a public identity: a public key plus advisory metadata pointing
// at a repository of that identity's proofs.
type PubId struct {
	ID     Id
	URL    string
	IDType string
}

// String renders the identity's short form (its Id).
func (p PubId) String() string { return p.ID.String() }

//---------------------------------------------------------------------
// OwnId
//---------------------------------------------------------------------

// OwnId is the exclusive owner of a secret key: it is created by generation
// or by unlocking a LockedId, and its secret bytes must be Destroy()ed when
// the caller is done with it.
type OwnId struct {
	Pub       PubId
	secretKey crevcrypto.SecretKey
}

// GenerateForGitURL samples a fresh keypair and wraps it in an OwnId whose
// PubId advertises url as the identity's proof repository.
func GenerateForGitURL(url string) (OwnId, error) {
	pk, sk, err := crevcrypto.GenerateKeypair()
	if err != nil {
		return OwnId{}, fmt.Errorf("id: generate: %w", err)
	}
	own := OwnId{
		Pub: PubId{
			ID:     Id(pk),
			URL:    url,
			IDType: IDType,
		},
		secretKey: sk,
	}
	logger.WithField("id", own.Pub.ID.String()).Info("generated new identity")
	return own, nil
}

// AsPubId returns the identity's public half.
func (o OwnId) AsPubId() PubId { return o.Pub }

// Sign signs msg with the owned secret key, returning a 64-byte signature.
// OwnId is the only type in this module allowed to touch secret key bytes.
func (o OwnId) Sign(msg []byte) [crevcrypto.SignatureSize]byte {
	return crevcrypto.Sign(o.secretKey, msg)
}

// Destroy zeroes the owned secret key bytes. Callers must call this (or let
// the OwnId go out of scope in a short-lived deferred pattern) once the
// identity is no longer needed.
func (o *OwnId) Destroy() {
	crevcrypto.Wipe(o.secretKey[:])
}

// ErrSecretKeyMismatch names the case of a derived public key that does not
// match its identity. No function in this package returns it: Unlock reports
// that case as ErrCorruptedLockedId.
var ErrSecretKeyMismatch = errors.New("id: secret key does not match public id")
