package crevcrypto

import "testing"

func TestSignVerifyRoundTrip(t *testing.T) {
	pk, sk, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}
	msg := []byte("hello crev")
	sig := Sign(sk, msg)
	if err := Verify(pk, msg, sig[:]); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	pk, sk, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}
	sig := Sign(sk, []byte("original"))
	if err := Verify(pk, []byte("tampered"), sig[:]); err == nil {
		t.Fatalf("expected Verify to reject tampered message")
	}
}

func TestPublicKeyFromSecretMatchesGenerated(t *testing.T) {
	pk, sk, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}
	if got := PublicKeyFromSecret(sk); got != pk {
		t.Fatalf("PublicKeyFromSecret mismatch: got %x want %x", got, pk)
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	salt, err := RandomSalt()
	if err != nil {
		t.Fatalf("RandomSalt failed: %v", err)
	}
	params := DefaultKDFParams()
	params.Salt = salt
	key, err := DeriveKey("correct horse battery staple", params)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	plaintext := []byte("a 32-byte ed25519 secret key seed")
	nonce, sealed, err := Seal(key, plaintext)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	got, err := Open(key, nonce, sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("Open mismatch: got %q want %q", got, plaintext)
	}
}

func TestOpenWrongKeyFailsAsBadPassphrase(t *testing.T) {
	salt, err := RandomSalt()
	if err != nil {
		t.Fatalf("RandomSalt failed: %v", err)
	}
	params := DefaultKDFParams()
	params.Salt = salt
	key, err := DeriveKey("p", params)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	nonce, sealed, err := Seal(key, []byte("secret"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	wrongParams := DefaultKDFParams()
	wrongParams.Salt = salt
	wrongKey, err := DeriveKey("q", wrongParams)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	if _, err := Open(wrongKey, nonce, sealed); err != ErrBadPassphrase {
		t.Fatalf("expected ErrBadPassphrase, got %v", err)
	}
}

func TestDeriveKeyRejectsUnsupportedVariant(t *testing.T) {
	params := DefaultKDFParams()
	params.Variant = "scrypt"
	if _, err := DeriveKey("x", params); err != ErrUnsupportedKdfVariant {
		t.Fatalf("expected ErrUnsupportedKdfVariant, got %v", err)
	}
}
