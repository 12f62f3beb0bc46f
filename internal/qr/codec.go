package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
)

const (
	encodedTokenLength = 16
	checksumLength     = 8
)

// payload is the JSON structure serialized into the printed QR code. The raw
// student secret never appears here; only its keyed hash does.
type payload struct {
	EncodedToken string `json:"encoded_token"`
	Checksum     string `json:"checksum"`
}

// Codec derives tamper-evident printable payloads from student QR secrets and
// verifies scanned payloads. All methods are pure; resolution back to a
// student happens in the caller by comparing against stored secrets.
type Codec struct {
	salt []byte
}

// NewCodec builds a codec keyed with the server-side salt.
func NewCodec(salt string) *Codec {
	return &Codec{salt: []byte(salt)}
}

// EncodeForPrint produces the printable payload for a student secret:
// base64(JSON{encoded_token, checksum}).
func (c *Codec) EncodeForPrint(secret string) string {
	encoded := c.EncodeToken(secret)
	data, _ := json.Marshal(payload{
		EncodedToken: encoded,
		Checksum:     c.checksum(encoded),
	})
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeToken returns the truncated keyed hash of a secret. The mapping is
// one-way; a printed code cannot be reversed to the stored secret.
func (c *Codec) EncodeToken(secret string) string {
	mac := hmac.New(sha256.New, c.salt)
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))[:encodedTokenLength]
}

// Decode parses and verifies a scanned payload, returning the encoded token.
// Any structural problem or checksum mismatch yields ok == false; the caller
// never learns which check failed.
func (c *Codec) Decode(scanned string) (encoded string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(scanned)
	if err != nil {
		return "", false
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", false
	}

	if len(p.EncodedToken) != encodedTokenLength || len(p.Checksum) != checksumLength {
		return "", false
	}

	expected := c.checksum(p.EncodedToken)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(p.Checksum)) != 1 {
		return "", false
	}

	return p.EncodedToken, true
}

// MatchesSecret reports whether a stored secret hashes to the encoded token.
func (c *Codec) MatchesSecret(secret, encoded string) bool {
	return subtle.ConstantTimeCompare([]byte(c.EncodeToken(secret)), []byte(encoded)) == 1
}

func (c *Codec) checksum(encoded string) string {
	mac := hmac.New(sha256.New, c.salt)
	mac.Write([]byte(encoded))
	mac.Write(c.salt)
	return hex.EncodeToString(mac.Sum(nil))[:checksumLength]
}
