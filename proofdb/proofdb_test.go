package proofdb

import (
	"testing"
	"time"

	crevid "github.com/womingyoutian/crev/id"
	"github.com/womingyoutian/crev/pkg/clock"
	"github.com/womingyoutian/crev/proof"
)

func genId(t *testing.T, url string) crevid.OwnId {
	t.Helper()
	own, err := crevid.GenerateForGitURL(url)
	if err != nil {
		t.Fatalf("GenerateForGitURL(%s) failed: %v", url, err)
	}
	return own
}

func trustProof(t *testing.T, from crevid.OwnId, to []crevid.PubId, level proof.TrustLevel, at time.Time) proof.Proof {
	t.Helper()
	body, err := proof.NewTrustProofBody(from.AsPubId(), to, level, "", clock.Fixed{At: at})
	if err != nil {
		t.Fatalf("NewTrustProofBody failed: %v", err)
	}
	p, err := proof.SignBy(body, from)
	if err != nil {
		t.Fatalf("SignBy failed: %v", err)
	}
	return p
}

// TestTrustSetDistance mirrors tests.rs's proofdb_distance: a chain
// a --high--> b --medium--> c --low--> d --high--> e, with distances
// {high:1, medium:10, low:100, max:111}. d is reachable at 1+10+100=111,
// e at +1=112 which exceeds max, so e starts outside the trust set; adding
// a medium b->d edge (distance 11) pulls e within reach (11+1=12).
func TestTrustSetDistance(t *testing.T) {
	a := genId(t, "https://a")
	b := genId(t, "https://b")
	c := genId(t, "https://c")
	d := genId(t, "https://d")
	e := genId(t, "https://e")
	defer a.Destroy()
	defer b.Destroy()
	defer c.Destroy()
	defer d.Destroy()
	defer e.Destroy()

	now := time.Now()
	db := New()
	errs := db.ImportFromIter([]proof.Proof{
		trustProof(t, a, []crevid.PubId{b.AsPubId()}, proof.TrustHigh, now),
		trustProof(t, b, []crevid.PubId{c.AsPubId()}, proof.TrustMedium, now),
		trustProof(t, c, []crevid.PubId{d.AsPubId()}, proof.TrustLow, now),
		trustProof(t, d, []crevid.PubId{e.AsPubId()}, proof.TrustHigh, now),
	})
	for i, err := range errs {
		if err != nil {
			t.Fatalf("import %d failed: %v", i, err)
		}
	}

	params := TrustDistanceParams{HighTrustDistance: 1, MediumTrustDistance: 10, LowTrustDistance: 100, MaxDistance: 111}
	set := db.CalculateTrustSet(a.AsPubId().ID, params)

	for name, id := range map[string]crevid.Id{"a": a.AsPubId().ID, "b": b.AsPubId().ID, "c": c.AsPubId().ID, "d": d.AsPubId().ID} {
		if _, ok := set.Distance(id); !ok {
			t.Fatalf("expected %s to be trusted", name)
		}
	}
	if _, ok := set.Distance(e.AsPubId().ID); ok {
		t.Fatalf("expected e to NOT be trusted yet")
	}

	errs = db.ImportFromIter([]proof.Proof{
		trustProof(t, b, []crevid.PubId{d.AsPubId()}, proof.TrustMedium, now.Add(time.Second)),
	})
	if errs[0] != nil {
		t.Fatalf("import of b->d failed: %v", errs[0])
	}

	set = db.CalculateTrustSet(a.AsPubId().ID, params)
	for name, id := range map[string]crevid.Id{"a": a.AsPubId().ID, "b": b.AsPubId().ID, "c": c.AsPubId().ID, "d": d.AsPubId().ID, "e": e.AsPubId().ID} {
		if _, ok := set.Distance(id); !ok {
			t.Fatalf("expected %s to be trusted after adding b->d", name)
		}
	}
}

// TestOverwritingReviews mirrors tests.rs's overwritting_reviews: the same
// signer publishes two reviews of the same package a millisecond apart;
// regardless of import order, only the later one (comment "b") survives,
// and it is visible exactly once at every query granularity.
func TestOverwritingReviews(t *testing.T) {
	a := genId(t, "https://a")
	defer a.Destroy()

	digest := make([]byte, 32)
	pkg := proof.PackageInfo{Source: "source", Name: "name", Version: "version", Digest: digest}

	t0 := time.Now()
	body1 := proof.NewPackageReviewBody(a.AsPubId(), pkg, proof.Review{}, "a", clock.Fixed{At: t0})
	body2 := proof.NewPackageReviewBody(a.AsPubId(), pkg, proof.Review{}, "b", clock.Fixed{At: t0.Add(time.Millisecond)})

	p1, err := proof.SignBy(body1, a)
	if err != nil {
		t.Fatalf("SignBy failed: %v", err)
	}
	p2, err := proof.SignBy(body2, a)
	if err != nil {
		t.Fatalf("SignBy failed: %v", err)
	}

	orders := [][]proof.Proof{{p1, p2}, {p2, p1}}
	for _, order := range orders {
		db := New()
		for _, err := range db.ImportFromIter(order) {
			if err != nil {
				t.Fatalf("import failed: %v", err)
			}
		}

		byDigest := db.GetPackageReviewsByDigest(digest)
		if len(byDigest) != 1 || byDigest[0].Comment != "b" {
			t.Fatalf("expected exactly one review with comment b, got %+v", byDigest)
		}

		name, version := "name", "version"
		if got := len(db.GetPackageReviewsForPackage("source", &name, &version)); got != 1 {
			t.Fatalf("expected 1 review at (source,name,version), got %d", got)
		}
		if got := len(db.GetPackageReviewsForPackage("source", &name, nil)); got != 1 {
			t.Fatalf("expected 1 review at (source,name), got %d", got)
		}
		if got := len(db.GetPackageReviewsForPackage("source", nil, nil)); got != 1 {
			t.Fatalf("expected 1 review at (source), got %d", got)
		}
	}
}

// TestTrustSetDistrust mirrors tests.rs's proofdb_distrust: a trusts b and c
// highly; b trusts d at low; d distrusts c; c trusts e highly. d is
// candidate-trusted via b (distance 101), so its distrust of c removes c, and
// e (reachable only through c) drops out with it: the set is {a, b, d}.
// Adding e->d distrust then removes d as well: the first flood of the fixed
// point runs before anything is excluded, and in it e is candidate-trusted
// via c (distance 2), so e's distrust of d fires in the same pass as d's
// distrust of c. Excluded ids stay excluded, so the set becomes {a, b}.
func TestTrustSetDistrust(t *testing.T) {
	a := genId(t, "https://a")
	b := genId(t, "https://b")
	c := genId(t, "https://c")
	d := genId(t, "https://d")
	e := genId(t, "https://e")
	defer a.Destroy()
	defer b.Destroy()
	defer c.Destroy()
	defer d.Destroy()
	defer e.Destroy()

	now := time.Now()
	db := New()
	for _, err := range db.ImportFromIter([]proof.Proof{
		trustProof(t, a, []crevid.PubId{b.AsPubId(), c.AsPubId()}, proof.TrustHigh, now),
		trustProof(t, b, []crevid.PubId{d.AsPubId()}, proof.TrustLow, now),
		trustProof(t, d, []crevid.PubId{c.AsPubId()}, proof.TrustDistrust, now),
		trustProof(t, c, []crevid.PubId{e.AsPubId()}, proof.TrustHigh, now),
	}) {
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}
	}

	params := TrustDistanceParams{HighTrustDistance: 1, MediumTrustDistance: 10, LowTrustDistance: 100, MaxDistance: 10000}
	set := db.CalculateTrustSet(a.AsPubId().ID, params)

	mustTrusted := func(name string, id crevid.Id, want bool) {
		_, ok := set.Distance(id)
		if ok != want {
			t.Fatalf("%s: expected trusted=%v, got %v", name, want, ok)
		}
	}
	mustTrusted("a", a.AsPubId().ID, true)
	mustTrusted("b", b.AsPubId().ID, true)
	mustTrusted("c", c.AsPubId().ID, false)
	mustTrusted("d", d.AsPubId().ID, true)
	mustTrusted("e", e.AsPubId().ID, false)

	for _, err := range db.ImportFromIter([]proof.Proof{
		trustProof(t, e, []crevid.PubId{d.AsPubId()}, proof.TrustDistrust, now.Add(time.Second)),
	}) {
		if err != nil {
			t.Fatalf("import of e->d distrust failed: %v", err)
		}
	}

	set = db.CalculateTrustSet(a.AsPubId().ID, params)
	mustTrusted("a (round 2)", a.AsPubId().ID, true)
	mustTrusted("b (round 2)", b.AsPubId().ID, true)
	mustTrusted("c (round 2)", c.AsPubId().ID, false)
	mustTrusted("d (round 2)", d.AsPubId().ID, false)
	mustTrusted("e (round 2)", e.AsPubId().ID, false)
}

func TestIngestRejectsEmptyIdsTrustProof(t *testing.T) {
	a := genId(t, "https://a")
	defer a.Destroy()

	body := proof.TrustBody{Version: proof.CurrentProofVersion, Date: time.Now(), From: a.AsPubId(), Trust: proof.TrustHigh}
	canonical, err := body.CanonicalYAML()
	if err != nil {
		t.Fatalf("CanonicalYAML failed: %v", err)
	}
	sig := a.Sign(canonical)
	p := proof.Proof{Body: body, BodyText: canonical, Signature: sig}

	db := New()
	errs := db.ImportFromIter([]proof.Proof{p})
	if errs[0] == nil {
		t.Fatalf("expected empty-ids trust proof to be rejected")
	}
}

func TestIngestRejectsTamperedSignature(t *testing.T) {
	a := genId(t, "https://a")
	defer a.Destroy()
	b := genId(t, "https://b")
	defer b.Destroy()

	p := trustProof(t, a, []crevid.PubId{b.AsPubId()}, proof.TrustHigh, time.Now())
	p.BodyText = append([]byte{}, p.BodyText...)
	p.BodyText[0] = 'X'

	db := New()
	errs := db.ImportFromIter([]proof.Proof{p})
	if errs[0] == nil {
		t.Fatalf("expected tampered proof to be rejected")
	}
	if len(db.GetPackageReviewsForPackage("anything", nil, nil)) != 0 {
		t.Fatalf("expected no state mutation from a rejected proof")
	}
}
