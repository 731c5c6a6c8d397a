// Package proof implements crev's signed proof documents: trust
// assertions between identities and package reviews (spec.md §3, §4.3,
// §4.4). A Proof pairs a typed Body with the exact bytes that were signed
// and the signature itself; Body implementations know how to render and
// parse their own YAML payload.
package proof

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/womingyoutian/crev/id"
)

// Kind names the proof envelope's document type, the token that follows
// "-----BEGIN CREV " in the envelope header (spec.md §4.3).
type Kind string

const (
	KindTrust         Kind = "TRUST"
	KindPackageReview Kind = "PACKAGE REVIEW"
)

// Body is implemented by every typed proof payload (TrustBody,
// PackageReviewBody). CanonicalYAML renders the payload as it should appear
// between the envelope's header and footer when freshly created; Kind names
// the document type for the envelope header.
type Body interface {
	Kind() Kind
	CanonicalYAML() ([]byte, error)
	// SignerID returns the identity this body claims as its signer, used
	// to look up the public key for envelope verification.
	SignerID() id.Id
}

//---------------------------------------------------------------------
// shared wire fragments
//---------------------------------------------------------------------

type pubIdWire struct {
	IDType string `yaml:"id-type"`
	ID     string `yaml:"id"`
	URL    string `yaml:"url,omitempty"`
}

func toPubIdWire(p id.PubId) pubIdWire {
	return pubIdWire{IDType: p.IDType, ID: p.ID.String(), URL: p.URL}
}

func (w pubIdWire) toPubId() (id.PubId, error) {
	parsed, err := id.ParseId(w.ID)
	if err != nil {
		return id.PubId{}, fmt.Errorf("%w: from.id: %v", ErrMalformedProof, err)
	}
	idType := w.IDType
	if idType == "" {
		idType = id.IDType
	}
	return id.PubId{ID: parsed, URL: w.URL, IDType: idType}, nil
}

// CurrentProofVersion is stamped on newly-created proof bodies.
const CurrentProofVersion int32 = 1

// checkVersion enforces spec.md §10's resolution of the version open
// question: the legacy sentinel and the current schema version are
// accepted, anything else is rejected rather than silently interpreted
// under a schema it was never written for.
func checkVersion(v int32) error {
	if v == -1 || v == CurrentProofVersion {
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
}

// dateString formats t the way crev proof dates are written on the wire:
// RFC3339 with nanosecond precision, matching the legacy fixture
// ("2018-12-18T23:10:21.111854021-08:00").
func dateString(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.999999999Z07:00")
}

//---------------------------------------------------------------------
// TrustBody
//---------------------------------------------------------------------

// TrustBody is the payload of a TRUST proof: the signer vouches for (or
// distrusts) a set of other identities at a single TrustLevel
// (spec.md §3 Trust Proof).
type TrustBody struct {
	Version int32
	Date    time.Time
	From    id.PubId
	Ids     []id.PubId
	Trust   TrustLevel
	Comment string
}

func (b TrustBody) Kind() Kind      { return KindTrust }
func (b TrustBody) SignerID() id.Id { return b.From.ID }

// Validate enforces spec.md §3's invariant on a trust proof's subject list:
// it must be non-empty and contain no duplicate id (spec.md §7
// InvalidTrustProof).
func (b TrustBody) Validate() error {
	if len(b.Ids) == 0 {
		return fmt.Errorf("%w: empty ids list", ErrInvalidTrustProof)
	}
	seen := make(map[id.Id]struct{}, len(b.Ids))
	for _, p := range b.Ids {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidTrustProof, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

type trustBodyWire struct {
	Version int32       `yaml:"version"`
	Date    string      `yaml:"date"`
	From    pubIdWire   `yaml:"from"`
	Ids     []pubIdWire `yaml:"ids"`
	Trust   TrustLevel  `yaml:"trust"`
	Comment string      `yaml:"comment,omitempty"`
}

// CanonicalYAML renders the body the way a freshly-created trust proof is
// serialized for signing (spec.md §4.3 step 1).
func (b TrustBody) CanonicalYAML() ([]byte, error) {
	ids := make([]pubIdWire, len(b.Ids))
	for i, p := range b.Ids {
		ids[i] = toPubIdWire(p)
	}
	return yaml.Marshal(trustBodyWire{
		Version: b.Version,
		Date:    dateString(b.Date),
		From:    toPubIdWire(b.From),
		Ids:     ids,
		Trust:   b.Trust,
		Comment: b.Comment,
	})
}

// parseTrustBody decodes raw body bytes (captured verbatim from an envelope,
// spec.md §4.3 step 2) into a TrustBody. Date is parsed best-effort: a
// malformed date does not prevent the proof from being parsed or verified,
// since verification only ever operates on the raw bytes, never on this
// decoded form.
func parseTrustBody(raw []byte) (TrustBody, error) {
	var w trustBodyWire
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return TrustBody{}, fmt.Errorf("%w: decode trust body: %v", ErrMalformedProof, err)
	}
	if err := checkVersion(w.Version); err != nil {
		return TrustBody{}, err
	}
	from, err := w.From.toPubId()
	if err != nil {
		return TrustBody{}, err
	}
	ids := make([]id.PubId, len(w.Ids))
	for i, iw := range w.Ids {
		p, err := iw.toPubId()
		if err != nil {
			return TrustBody{}, err
		}
		ids[i] = p
	}
	date, _ := time.Parse("2006-01-02T15:04:05.999999999Z07:00", w.Date)
	out := TrustBody{
		Version: w.Version,
		Date:    date,
		From:    from,
		Ids:     ids,
		Trust:   w.Trust,
		Comment: w.Comment,
	}
	if err := out.Validate(); err != nil {
		return TrustBody{}, err
	}
	return out, nil
}

//---------------------------------------------------------------------
// PackageReviewBody
//---------------------------------------------------------------------

// DigestType and RevisionType default values used when a PackageInfo does
// not specify its own (this module's own choice — the original on-disk
// defaults are not present in the retrieved source; see DESIGN.md).
const (
	DefaultDigestType   = "blake3"
	DefaultRevisionType = "git"
)

// PackageInfo identifies the exact artifact a review applies to
// (spec.md §3 PackageInfo).
type PackageInfo struct {
	Source       string
	Name         string
	Version      string
	Revision     string
	RevisionType string
	Digest       []byte
	DigestType   string
}

type packageInfoWire struct {
	Source       string `yaml:"source"`
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	Revision     string `yaml:"revision,omitempty"`
	RevisionType string `yaml:"revision-type,omitempty"`
	Digest       string `yaml:"digest"`
	DigestType   string `yaml:"digest-type,omitempty"`
}

// Review holds a reviewer's graded assessment of a package (spec.md §3
// Review).
type Review struct {
	Thoroughness  TrustLevel
	Understanding TrustLevel
	Rating        Rating
}

type reviewWire struct {
	Thoroughness  TrustLevel `yaml:"thoroughness"`
	Understanding TrustLevel `yaml:"understanding"`
	Rating        Rating     `yaml:"rating"`
}

// PackageReviewBody is the payload of a PACKAGE REVIEW proof
// (spec.md §3 Package Review Proof).
type PackageReviewBody struct {
	Version int32
	Date    time.Time
	From    id.PubId
	Package PackageInfo
	Review  Review
	Comment string
}

func (b PackageReviewBody) Kind() Kind      { return KindPackageReview }
func (b PackageReviewBody) SignerID() id.Id { return b.From.ID }

type packageReviewBodyWire struct {
	Version int32           `yaml:"version"`
	Date    string          `yaml:"date"`
	From    pubIdWire       `yaml:"from"`
	Package packageInfoWire `yaml:"package"`
	Review  reviewWire      `yaml:"review"`
	Comment string          `yaml:"comment,omitempty"`
}

// CanonicalYAML renders the body the way a freshly-created package review
// proof is serialized for signing (spec.md §4.4 step 1).
func (b PackageReviewBody) CanonicalYAML() ([]byte, error) {
	pkg := b.Package
	digestType := pkg.DigestType
	if digestType == "" {
		digestType = DefaultDigestType
	}
	revType := pkg.RevisionType
	if revType == "" && pkg.Revision != "" {
		revType = DefaultRevisionType
	}
	return yaml.Marshal(packageReviewBodyWire{
		Version: b.Version,
		Date:    dateString(b.Date),
		From:    toPubIdWire(b.From),
		Package: packageInfoWire{
			Source:       pkg.Source,
			Name:         pkg.Name,
			Version:      pkg.Version,
			Revision:     pkg.Revision,
			RevisionType: revType,
			Digest:       b64OrEmpty(pkg.Digest),
			DigestType:   digestType,
		},
		Review: reviewWire{
			Thoroughness:  b.Review.Thoroughness,
			Understanding: b.Review.Understanding,
			Rating:        b.Review.Rating,
		},
		Comment: b.Comment,
	})
}

func parsePackageReviewBody(raw []byte) (PackageReviewBody, error) {
	var w packageReviewBodyWire
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return PackageReviewBody{}, fmt.Errorf("%w: decode package review body: %v", ErrMalformedProof, err)
	}
	if err := checkVersion(w.Version); err != nil {
		return PackageReviewBody{}, err
	}
	from, err := w.From.toPubId()
	if err != nil {
		return PackageReviewBody{}, err
	}
	digest, err := b64DecodeOrEmpty(w.Package.Digest)
	if err != nil {
		return PackageReviewBody{}, fmt.Errorf("proof: package.digest: %w", err)
	}
	date, _ := time.Parse("2006-01-02T15:04:05.999999999Z07:00", w.Date)
	return PackageReviewBody{
		Version: w.Version,
		Date:    date,
		From:    from,
		Package: PackageInfo{
			Source:       w.Package.Source,
			Name:         w.Package.Name,
			Version:      w.Package.Version,
			Revision:     w.Package.Revision,
			RevisionType: w.Package.RevisionType,
			Digest:       digest,
			DigestType:   w.Package.DigestType,
		},
		Review: Review{
			Thoroughness:  w.Review.Thoroughness,
			Understanding: w.Review.Understanding,
			Rating:        w.Review.Rating,
		},
		Comment: w.Comment,
	}, nil
}
