package id

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/womingyoutian/crev/crevcrypto"
	"github.com/womingyoutian/crev/internal/b64url"
)

//---------------------------------------------------------------------
// Errors
//---------------------------------------------------------------------

var (
	// ErrBadPassphrase is returned by Unlock when the passphrase does not
	// authenticate the sealed secret key.
	ErrBadPassphrase = crevcrypto.ErrBadPassphrase
	// ErrCorruptedLockedId is returned by Unlock when the revealed secret
	// key does not correspond to the LockedId's declared public key, or
	// the stored KDF parameters are unsupported.
	ErrCorruptedLockedId = errors.New("id: corrupted locked id")
)

//---------------------------------------------------------------------
// LockedId
//---------------------------------------------------------------------

// LockedId is an identity whose secret key is stored only in sealed form,
// decryptable with a passphrase (spec.md §3, §4.2).
type LockedId struct {
	// Version is the on-disk schema version. -1 is the accepted legacy
	// sentinel; unknown positive values are also accepted for reading
	// (spec.md §4.2, §9) since this field does not gate secret recovery.
	Version int32
	Pub      PubId
	KDF      crevcrypto.KDFParams
	SealNonce [crevcrypto.SealNonceSize]byte
	Sealed    []byte
}

// CurrentLockedIdVersion is stamped on newly-locked identities.
const CurrentLockedIdVersion int32 = 1

// Lock seals own's secret key under passphrase using fresh salt and nonce,
// producing a LockedId suitable for at-rest storage. KDF parameters default
// to crevcrypto.DefaultKDFParams(); LockWithParams takes caller-supplied
// parameters instead.
func Lock(own OwnId, passphrase string) (LockedId, error) {
	return LockWithParams(own, passphrase, crevcrypto.DefaultKDFParams())
}

// LockWithParams is Lock with caller-supplied KDF parameters (iterations and
// memory size may only be raised above the defaults per spec.md §4.2). The
// salt in params is ignored; a fresh one is always sampled.
func LockWithParams(own OwnId, passphrase string, params crevcrypto.KDFParams) (LockedId, error) {
	salt, err := crevcrypto.RandomSalt()
	if err != nil {
		return LockedId{}, fmt.Errorf("id: lock: sample salt: %w", err)
	}
	params.Salt = salt

	key, err := crevcrypto.DeriveKey(passphrase, params)
	if err != nil {
		return LockedId{}, fmt.Errorf("id: lock: derive key: %w", err)
	}

	nonce, sealed, err := crevcrypto.Seal(key, own.secretKey[:])
	if err != nil {
		return LockedId{}, fmt.Errorf("id: lock: seal: %w", err)
	}

	return LockedId{
		Version:   CurrentLockedIdVersion,
		Pub:       own.Pub,
		KDF:       params,
		SealNonce: nonce,
		Sealed:    sealed,
	}, nil
}

// Unlock derives the sealing key from the stored passphrase parameters and
// opens the seal, returning the recovered OwnId. It fails with
// ErrBadPassphrase on authentication-tag mismatch, and with
// ErrCorruptedLockedId if the revealed secret key does not match l.Pub.ID.
func (l LockedId) Unlock(passphrase string) (OwnId, error) {
	key, err := crevcrypto.DeriveKey(passphrase, l.KDF)
	if err != nil {
		return OwnId{}, fmt.Errorf("%w: %v", ErrCorruptedLockedId, err)
	}

	plain, err := crevcrypto.Open(key, l.SealNonce, l.Sealed)
	if err != nil {
		return OwnId{}, err // crevcrypto.ErrBadPassphrase, returned as-is
	}
	if len(plain) != crevcrypto.SecretKeySize {
		return OwnId{}, ErrCorruptedLockedId
	}

	var sk crevcrypto.SecretKey
	copy(sk[:], plain)
	crevcrypto.Wipe(plain)

	if crevcrypto.PublicKeyFromSecret(sk) != crevcrypto.PublicKey(l.Pub.ID) {
		crevcrypto.Wipe(sk[:])
		return OwnId{}, ErrCorruptedLockedId
	}

	logger.WithField("id", l.Pub.ID.String()).Info("unlocked identity")
	return OwnId{Pub: l.Pub, secretKey: sk}, nil
}

//---------------------------------------------------------------------
// YAML codec (spec.md §6)
//---------------------------------------------------------------------

type lockedIdKDFWire struct {
	Version    uint32 `yaml:"version"`
	Variant    string `yaml:"variant"`
	Iterations uint32 `yaml:"iterations"`
	MemorySize uint32 `yaml:"memory-size"`
	Salt       string `yaml:"salt"`
}

type lockedIdWire struct {
	Version         int32           `yaml:"version"`
	URL             string          `yaml:"url"`
	PublicKey       string          `yaml:"public-key"`
	SealedSecretKey string          `yaml:"sealed-secret-key"`
	SealNonce       string          `yaml:"seal-nonce"`
	Pass            lockedIdKDFWire `yaml:"pass"`
}

// MarshalYAML implements yaml.Marshaler, emitting the stable field layout
// from spec.md §6 with every byte string in base64url-without-padding.
func (l LockedId) MarshalYAML() (interface{}, error) {
	return lockedIdWire{
		Version:         l.Version,
		URL:             l.Pub.URL,
		PublicKey:       b64url.Encode(l.Pub.ID[:]),
		SealedSecretKey: b64url.Encode(l.Sealed),
		SealNonce:       b64url.Encode(l.SealNonce[:]),
		Pass: lockedIdKDFWire{
			Version:    l.KDF.Version,
			Variant:    l.KDF.Variant,
			Iterations: l.KDF.Iterations,
			MemorySize: l.KDF.MemorySizeKB,
			Salt:       b64url.Encode(l.KDF.Salt[:]),
		},
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Unknown Version values
// (including the legacy sentinel -1) are accepted without error, per
// spec.md §4.2.
func (l *LockedId) UnmarshalYAML(value *yaml.Node) error {
	var w lockedIdWire
	if err := value.Decode(&w); err != nil {
		return fmt.Errorf("id: decode locked id: %w", err)
	}

	pubKey, err := b64url.Decode(w.PublicKey)
	if err != nil || len(pubKey) != crevcrypto.PublicKeySize {
		return fmt.Errorf("id: invalid public-key: %w", err)
	}
	sealed, err := b64url.Decode(w.SealedSecretKey)
	if err != nil {
		return fmt.Errorf("id: invalid sealed-secret-key: %w", err)
	}
	nonce, err := b64url.Decode(w.SealNonce)
	if err != nil || len(nonce) != crevcrypto.SealNonceSize {
		return fmt.Errorf("id: invalid seal-nonce: %w", err)
	}
	salt, err := b64url.Decode(w.Pass.Salt)
	if err != nil || len(salt) != 32 {
		return fmt.Errorf("id: invalid pass.salt: %w", err)
	}

	var id32 Id
	copy(id32[:], pubKey)
	var nonce24 [crevcrypto.SealNonceSize]byte
	copy(nonce24[:], nonce)
	var salt32 [32]byte
	copy(salt32[:], salt)

	l.Version = w.Version
	l.Pub = PubId{ID: id32, URL: w.URL, IDType: IDType}
	l.KDF = crevcrypto.KDFParams{
		Variant:      w.Pass.Variant,
		Version:      w.Pass.Version,
		Iterations:   w.Pass.Iterations,
		MemorySizeKB: w.Pass.MemorySize,
		Salt:         salt32,
	}
	l.SealNonce = nonce24
	l.Sealed = sealed
	return nil
}

// ParseLockedIdYAML decodes a single LockedId YAML document, the stable
// on-disk identity format described in spec.md §6.
func ParseLockedIdYAML(data []byte) (LockedId, error) {
	var l LockedId
	if err := yaml.Unmarshal(data, &l); err != nil {
		return LockedId{}, err
	}
	return l, nil
}

// MarshalLockedIdYAML renders l as the stable on-disk identity YAML.
func MarshalLockedIdYAML(l LockedId) ([]byte, error) {
	return yaml.Marshal(l)
}
