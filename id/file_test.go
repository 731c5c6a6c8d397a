package id

import (
	"testing"

	"github.com/womingyoutian/crev/internal/testutil"
)

func TestLockedIdFileRoundTrip(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	own, err := GenerateForGitURL("https://example.com/crev-proofs")
	if err != nil {
		t.Fatalf("GenerateForGitURL failed: %v", err)
	}
	defer own.Destroy()

	locked, err := Lock(own, "pass")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}
	data, err := MarshalLockedIdYAML(locked)
	if err != nil {
		t.Fatalf("MarshalLockedIdYAML failed: %v", err)
	}
	if err := sb.WriteFile("id.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	onDisk, err := sb.ReadFile("id.yaml")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	restored, err := ParseLockedIdYAML(onDisk)
	if err != nil {
		t.Fatalf("ParseLockedIdYAML failed: %v", err)
	}
	unlocked, err := restored.Unlock("pass")
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	defer unlocked.Destroy()

	if unlocked.Pub.ID != own.Pub.ID {
		t.Fatalf("id mismatch after file round trip: got %s want %s", unlocked.Pub.ID, own.Pub.ID)
	}
}
