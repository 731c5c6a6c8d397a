// Package proofdb implements the in-memory proof store: ingestion with
// latest-date-wins deduplication, lookup indices, and the trust-distance
// flood that turns a web of trust proofs into a concrete trust set for one
// viewer (spec.md §4.5, §4.6).
package proofdb

import (
	"fmt"
	"io"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	crevid "github.com/womingyoutian/crev/id"
	"github.com/womingyoutian/crev/proof"
)

var logger = log.New()

func init() {
	logger.SetOutput(io.Discard)
}

// SetLogger overrides the package logger used for ingestion diagnostics.
func SetLogger(l *log.Logger) { logger = l }

//---------------------------------------------------------------------
// records and keys
//---------------------------------------------------------------------

// TrustRecord is the latest trust assertion known for an ordered
// (from, to) pair (spec.md §3).
type TrustRecord struct {
	Level proof.TrustLevel
	Date  time.Time
}

type trustEdgeKey struct {
	From crevid.Id
	To   crevid.Id
}

// ReviewRecord is the latest package review known for one (signer, pkgkey)
// pair (spec.md §3).
type ReviewRecord struct {
	Date time.Time
	Body proof.PackageReviewBody
}

type reviewKey struct {
	Signer  crevid.Id
	Source  string
	Name    string
	Version string
}

type pkgKey struct {
	Source  string
	Name    string
	Version string
}

type urlRecord struct {
	URL  string
	Date time.Time
}

//---------------------------------------------------------------------
// ProofDB
//---------------------------------------------------------------------

// ProofDB is a single-writer, multi-reader in-memory proof store
// (spec.md §5): callers are expected to serialize all ingestion calls
// themselves; nothing here blocks or performs I/O.
type ProofDB struct {
	trustEdges map[trustEdgeKey]TrustRecord
	reviews    map[reviewKey]ReviewRecord

	// reviewsByDigest maps a package digest to the set of signers who
	// currently hold a review pointing at it, each resolving back into
	// reviews via its pkgKey (spec.md §3 package_reviews_by_digest).
	reviewsByDigest map[string]map[crevid.Id]pkgKey

	// reviewsByPkgKey supports the hierarchical get_package_reviews_for_package
	// query: source -> name -> version -> set of signers.
	reviewsByPkgKey map[string]map[string]map[string]map[crevid.Id]struct{}

	urlByID map[crevid.Id]urlRecord
}

// New returns an empty ProofDB.
func New() *ProofDB {
	return &ProofDB{
		trustEdges:      map[trustEdgeKey]TrustRecord{},
		reviews:         map[reviewKey]ReviewRecord{},
		reviewsByDigest: map[string]map[crevid.Id]pkgKey{},
		reviewsByPkgKey: map[string]map[string]map[string]map[crevid.Id]struct{}{},
		urlByID:         map[crevid.Id]urlRecord{},
	}
}

//---------------------------------------------------------------------
// Ingestion
//---------------------------------------------------------------------

// ImportFromIter ingests each proof independently and returns a per-proof
// result: a nil entry means the proof was accepted (or, for a stale
// duplicate, correctly discarded); a non-nil entry names why ingestion
// rejected it. A rejected proof leaves ProofDB state unchanged
// (spec.md §4.7). Dates strictly order the replace decision; on an exact
// tie the later-inserted record wins, so the order proofs are given in
// here only matters among same-dated duplicates (spec.md §3, §9).
func (db *ProofDB) ImportFromIter(proofs []proof.Proof) []error {
	results := make([]error, len(proofs))
	for i, p := range proofs {
		if err := db.importOne(p); err != nil {
			logger.WithError(err).Warn("rejected proof during ingestion")
			results[i] = err
		}
	}
	return results
}

func (db *ProofDB) importOne(p proof.Proof) error {
	if err := p.Verify(); err != nil {
		return fmt.Errorf("proofdb: ingest: %w", err)
	}
	switch body := p.Body.(type) {
	case proof.TrustBody:
		if err := body.Validate(); err != nil {
			return fmt.Errorf("proofdb: ingest: %w", err)
		}
		db.ingestTrust(body)
		return nil
	case proof.PackageReviewBody:
		db.ingestPackageReview(body)
		return nil
	default:
		return fmt.Errorf("proofdb: ingest: unsupported proof body %T", p.Body)
	}
}

func (db *ProofDB) ingestTrust(body proof.TrustBody) {
	from := body.From.ID
	for _, to := range body.Ids {
		key := trustEdgeKey{From: from, To: to.ID}
		if existing, ok := db.trustEdges[key]; !ok || !body.Date.Before(existing.Date) {
			db.trustEdges[key] = TrustRecord{Level: body.Trust, Date: body.Date}
		}
		db.updateURL(to.ID, to.URL, body.Date)
	}
	db.updateURL(from, body.From.URL, body.Date)
}

func (db *ProofDB) updateURL(id crevid.Id, url string, date time.Time) {
	if url == "" {
		return
	}
	if existing, ok := db.urlByID[id]; !ok || !date.Before(existing.Date) {
		db.urlByID[id] = urlRecord{URL: url, Date: date}
	}
}

func (db *ProofDB) ingestPackageReview(body proof.PackageReviewBody) {
	key := reviewKey{
		Signer:  body.From.ID,
		Source:  body.Package.Source,
		Name:    body.Package.Name,
		Version: body.Package.Version,
	}

	existing, hadExisting := db.reviews[key]
	if hadExisting && body.Date.Before(existing.Date) {
		return // existing record is strictly newer: discard
	}

	db.reviews[key] = ReviewRecord{Date: body.Date, Body: body}

	newDigest := string(body.Package.Digest)
	if hadExisting {
		oldDigest := string(existing.Body.Package.Digest)
		if oldDigest != newDigest {
			db.removeFromDigestIndex(oldDigest, key)
		}
	}
	db.addToDigestIndex(newDigest, key)
	db.addToPkgKeyIndex(key)
	db.updateURL(body.From.ID, body.From.URL, body.Date)
}

func (db *ProofDB) addToDigestIndex(digest string, key reviewKey) {
	if digest == "" {
		return
	}
	m, ok := db.reviewsByDigest[digest]
	if !ok {
		m = map[crevid.Id]pkgKey{}
		db.reviewsByDigest[digest] = m
	}
	m[key.Signer] = pkgKey{Source: key.Source, Name: key.Name, Version: key.Version}
}

func (db *ProofDB) removeFromDigestIndex(digest string, key reviewKey) {
	if digest == "" {
		return
	}
	if m, ok := db.reviewsByDigest[digest]; ok {
		delete(m, key.Signer)
		if len(m) == 0 {
			delete(db.reviewsByDigest, digest)
		}
	}
}

func (db *ProofDB) addToPkgKeyIndex(key reviewKey) {
	bySource, ok := db.reviewsByPkgKey[key.Source]
	if !ok {
		bySource = map[string]map[string]map[crevid.Id]struct{}{}
		db.reviewsByPkgKey[key.Source] = bySource
	}
	byName, ok := bySource[key.Name]
	if !ok {
		byName = map[string]map[crevid.Id]struct{}{}
		bySource[key.Name] = byName
	}
	byVersion, ok := byName[key.Version]
	if !ok {
		byVersion = map[crevid.Id]struct{}{}
		byName[key.Version] = byVersion
	}
	byVersion[key.Signer] = struct{}{}
}

//---------------------------------------------------------------------
// Queries
//---------------------------------------------------------------------

// GetPackageReviewsByDigest returns the current review, one per signer, of
// every package whose digest equals digest (spec.md §4.5).
func (db *ProofDB) GetPackageReviewsByDigest(digest []byte) []proof.PackageReviewBody {
	m := db.reviewsByDigest[string(digest)]
	out := make([]proof.PackageReviewBody, 0, len(m))
	for signer, pk := range m {
		rec, ok := db.reviews[reviewKey{Signer: signer, Source: pk.Source, Name: pk.Name, Version: pk.Version}]
		if ok {
			out = append(out, rec.Body)
		}
	}
	sortReviewsBySigner(out)
	return out
}

// GetPackageReviewsForPackage runs the hierarchical package query
// (spec.md §4.5): name and version act as an optional prefix restriction
// under source. A nil name matches every package under source; a nil
// version (with name given) matches every version of that package.
func (db *ProofDB) GetPackageReviewsForPackage(source string, name, version *string) []proof.PackageReviewBody {
	bySource, ok := db.reviewsByPkgKey[source]
	if !ok {
		return nil
	}

	var names []string
	if name != nil {
		if _, ok := bySource[*name]; !ok {
			return nil
		}
		names = []string{*name}
	} else {
		for n := range bySource {
			names = append(names, n)
		}
	}

	var out []proof.PackageReviewBody
	for _, n := range names {
		byName := bySource[n]
		var versions []string
		if version != nil {
			if _, ok := byName[*version]; !ok {
				continue
			}
			versions = []string{*version}
		} else {
			for v := range byName {
				versions = append(versions, v)
			}
		}
		for _, v := range versions {
			for signer := range byName[v] {
				rec, ok := db.reviews[reviewKey{Signer: signer, Source: source, Name: n, Version: v}]
				if ok {
					out = append(out, rec.Body)
				}
			}
		}
	}
	sortReviewsBySigner(out)
	return out
}

func sortReviewsBySigner(rs []proof.PackageReviewBody) {
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].From.ID.String() < rs[j].From.ID.String()
	})
}
