package proof

import "github.com/womingyoutian/crev/internal/b64url"

func b64OrEmpty(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return b64url.Encode(b)
}

func b64DecodeOrEmpty(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return b64url.Decode(s)
}
