package proof

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/womingyoutian/crev/crevcrypto"
	"github.com/womingyoutian/crev/internal/b64url"
)

// Proof is a parsed or freshly-signed envelope: a typed Body, the exact
// bytes that were (or will be) signed, and the signature itself
// (spec.md §4.3).
type Proof struct {
	Body      Body
	BodyText  []byte
	Signature [crevcrypto.SignatureSize]byte
}

// Verify checks the proof's signature against the public key claimed by its
// own body (spec.md §4.3 step 5). It operates on BodyText exactly as
// captured or produced at signing time, never on a re-serialized form.
func (p Proof) Verify() error {
	pk := crevcrypto.PublicKey(p.Body.SignerID())
	return crevcrypto.Verify(pk, p.BodyText, p.Signature[:])
}

// Serialize renders p back into envelope text. For a proof obtained from
// Parse, Serialize(p) reproduces the original framing byte-for-byte except
// for the signature's line-wrapping, which is always emitted unwrapped
// (spec.md §4.4 round-trip property concerns the signed bytes, not the
// signature's display wrapping).
func Serialize(p Proof) []byte {
	kind := string(p.Body.Kind())
	var buf bytes.Buffer
	buf.WriteString("-----BEGIN CREV " + kind + "-----\n")
	buf.Write(p.BodyText)
	buf.WriteString("-----BEGIN CREV " + kind + " SIGNATURE-----\n")
	buf.WriteString(b64url.Encode(p.Signature[:]))
	buf.WriteString("\n-----END CREV " + kind + "-----\n")
	return buf.Bytes()
}

// Parse decodes a stream possibly containing several back-to-back proof
// envelopes (spec.md §4.3). Malformed framing is a hard error: the function
// returns no proofs on the first failure rather than skipping bad entries.
func Parse(data []byte) ([]Proof, error) {
	lines := strings.Split(string(data), "\n")

	var proofs []Proof
	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}

		kind, ok := parseHeaderLine(lines[i])
		if !ok {
			return nil, fmt.Errorf("%w: expected envelope header, got %q", ErrMalformedProof, lines[i])
		}
		i++

		bodyStart := i
		sigHeader := "-----BEGIN CREV " + kind + " SIGNATURE-----"
		for i < len(lines) && lines[i] != sigHeader {
			i++
		}
		if i >= len(lines) {
			return nil, fmt.Errorf("%w: missing signature separator for %q", ErrMalformedProof, kind)
		}
		bodyText := []byte(strings.Join(lines[bodyStart:i], "\n") + "\n")
		i++ // skip signature header

		sigStart := i
		footer := "-----END CREV " + kind + "-----"
		for i < len(lines) && lines[i] != footer {
			i++
		}
		if i >= len(lines) {
			return nil, fmt.Errorf("%w: missing footer for %q", ErrMalformedProof, kind)
		}
		sigText := strings.Join(strings.Fields(strings.Join(lines[sigStart:i], "")), "")
		i++ // skip footer

		sigBytes, err := b64url.Decode(sigText)
		if err != nil {
			return nil, fmt.Errorf("%w: undecodable signature: %v", ErrMalformedProof, err)
		}
		if len(sigBytes) != crevcrypto.SignatureSize {
			return nil, fmt.Errorf("%w: signature is %d bytes, want %d", ErrMalformedProof, len(sigBytes), crevcrypto.SignatureSize)
		}
		var sig [crevcrypto.SignatureSize]byte
		copy(sig[:], sigBytes)

		body, err := decodeBody(Kind(kind), bodyText)
		if err != nil {
			return nil, err
		}

		proofs = append(proofs, Proof{Body: body, BodyText: bodyText, Signature: sig})
	}
	return proofs, nil
}

func parseHeaderLine(line string) (string, bool) {
	const prefix = "-----BEGIN CREV "
	const suffix = "-----"
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, suffix) {
		return "", false
	}
	kind := strings.TrimSuffix(strings.TrimPrefix(line, prefix), suffix)
	if kind == "" || strings.HasSuffix(kind, " SIGNATURE") {
		return "", false
	}
	return kind, true
}

func decodeBody(kind Kind, raw []byte) (Body, error) {
	switch kind {
	case KindTrust:
		return parseTrustBody(raw)
	case KindPackageReview:
		return parsePackageReviewBody(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}
