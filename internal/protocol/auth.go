package protocol

import (
	"crypto/hmac"
	"crypto/sha256"

	perr "piled/internal/errors"
)

// Sign returns HMAC-SHA256(key, header ‖ payload).  An empty key is
// refused with ErrNoCredential so an unauthenticated frame can never
// be produced.
func Sign(key, header, payload []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, perr.ErrNoCredential
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(header)
	mac.Write(payload)
	return mac.Sum(nil), nil
}

// Verify checks the tag of an inbound frame against key.
func Verify(key []byte, in *Inbound) error {
	want, err := Sign(key, in.RawHeader, in.Payload)
	if err != nil {
		return err
	}
	if len(in.Tag) != TagSize || !hmac.Equal(want, in.Tag) {
		return perr.ErrAuthFailed
	}
	return nil
}
