package proof

import (
	"fmt"

	"github.com/womingyoutian/crev/id"
	"github.com/womingyoutian/crev/pkg/clock"
)

// NewTrustProofBody constructs the body of a trust proof naming from as the
// signer, asserting level of trust in every identity in ids
// (spec.md §4.4, mirroring PubId::create_trust_proof). The clock capability
// stamps the body with the current time rather than reaching for a global,
// per spec.md §6/§9. ids must be non-empty and free of duplicates
// (spec.md §3, §7 InvalidTrustProof); the caller is told immediately rather
// than being allowed to sign and publish a proof that will be rejected later.
func NewTrustProofBody(from id.PubId, ids []id.PubId, level TrustLevel, comment string, clk clock.Clock) (TrustBody, error) {
	body := TrustBody{
		Version: CurrentProofVersion,
		Date:    clk.Now(),
		From:    from,
		Ids:     ids,
		Trust:   level,
		Comment: comment,
	}
	if err := body.Validate(); err != nil {
		return TrustBody{}, err
	}
	return body, nil
}

// NewPackageReviewBody constructs the body of a package review proof
// (spec.md §4.4, mirroring PubId::create_package_review_proof).
func NewPackageReviewBody(from id.PubId, pkg PackageInfo, review Review, comment string, clk clock.Clock) PackageReviewBody {
	return PackageReviewBody{
		Version: CurrentProofVersion,
		Date:    clk.Now(),
		From:    from,
		Package: pkg,
		Review:  review,
		Comment: comment,
	}
}

// SignBy canonicalizes body and signs the canonical bytes with own's secret
// key, producing an envelope-ready Proof. The canonical bytes produced here
// are, by construction, exactly the bytes Parse would extract from the
// serialized envelope (spec.md §4.4 round-trip property).
func SignBy(body Body, own id.OwnId) (Proof, error) {
	canonical, err := body.CanonicalYAML()
	if err != nil {
		return Proof{}, fmt.Errorf("proof: canonicalize body: %w", err)
	}
	sig := own.Sign(canonical)
	return Proof{Body: body, BodyText: canonical, Signature: sig}, nil
}
