package id

import "testing"

func TestGenerateForGitURL(t *testing.T) {
	own, err := GenerateForGitURL("https://example.com/crev-proofs")
	if err != nil {
		t.Fatalf("GenerateForGitURL failed: %v", err)
	}
	defer own.Destroy()

	if own.Pub.IDType != IDType {
		t.Fatalf("unexpected id-type: %s", own.Pub.IDType)
	}
	if own.Pub.URL != "https://example.com/crev-proofs" {
		t.Fatalf("unexpected url: %s", own.Pub.URL)
	}

	sig := own.Sign([]byte("msg"))
	if len(sig) != 64 {
		t.Fatalf("expected 64-byte signature, got %d", len(sig))
	}
}

func TestIdStringParseRoundTrip(t *testing.T) {
	own, err := GenerateForGitURL("https://example.com")
	if err != nil {
		t.Fatalf("GenerateForGitURL failed: %v", err)
	}
	defer own.Destroy()

	s := own.Pub.ID.String()
	got, err := ParseId(s)
	if err != nil {
		t.Fatalf("ParseId failed: %v", err)
	}
	if got != own.Pub.ID {
		t.Fatalf("round trip mismatch: got %s want %s", got, s)
	}
}

func TestParseIdRejectsWrongLength(t *testing.T) {
	if _, err := ParseId("abc"); err == nil {
		t.Fatalf("expected error for short id")
	}
}
