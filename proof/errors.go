package proof

import (
	"errors"

	"github.com/womingyoutian/crev/crevcrypto"
)

var (
	// ErrMalformedProof covers envelope framing or body YAML that cannot be
	// parsed: missing footer, duplicate headers, a truncated signature, or
	// a from.id that does not decode to 32 bytes (spec.md §4.3).
	ErrMalformedProof = errors.New("proof: malformed proof")
	// ErrUnsupportedKind is returned for envelope kinds this core does not
	// implement a body type for (spec.md §4.3: only TRUST and
	// PACKAGE REVIEW are required).
	ErrUnsupportedKind = errors.New("proof: unsupported proof kind")
	// ErrUnsupportedVersion is returned when a body's version field is
	// neither the legacy sentinel (-1) nor the current schema version
	// (spec.md §10 open question resolution).
	ErrUnsupportedVersion = errors.New("proof: unsupported body version")
	// ErrBadSignature is crevcrypto's signature-verification failure,
	// re-exported so callers never need to import crevcrypto directly to
	// handle it.
	ErrBadSignature = crevcrypto.ErrBadSignature
	// ErrInvalidTrustProof is returned when a TrustBody's ids list is empty
	// or contains a duplicate entry (spec.md §3, §7).
	ErrInvalidTrustProof = errors.New("proof: trust proof has empty or duplicated ids")
)
