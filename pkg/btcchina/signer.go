package btcchina

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"strconv"

	"btcchina/pkg/core"
)

// Signature is everything derived from signing one private request.
type Signature struct {
	Tonce int64
	// Message is the canonical string that was signed.
	Message string
	// Digest is the hex HMAC-SHA1 of Message.
	Digest string
	// Authorization is the full Authorization header value.
	Authorization string
}

// TonceHeader returns the Json-Rpc-Tonce header value.
func (s *Signature) TonceHeader() string {
	return strconv.FormatInt(s.Tonce, 10)
}

// Sign signs a private call. It is a pure function of its arguments.
func Sign(creds *core.Credentials, method string, params []any, tonce int64) (*Signature, error) {
	if err := checkSignable(creds, method); err != nil {
		return nil, err
	}

	message := canonicalMessage(creds.AccessKey, method, params, tonce)
	digest := signHMAC(message, creds.SecretKey)

	return &Signature{
		Tonce:         tonce,
		Message:       message,
		Digest:        digest,
		Authorization: "Basic " + base64.StdEncoding.EncodeToString([]byte(creds.AccessKey+":"+digest)),
	}, nil
}

func checkSignable(creds *core.Credentials, method string) error {
	if !creds.Valid() {
		return core.NewValidationError("must provide key and secret to make this API request: %v", core.ErrNoCredentials)
	}
	if method == "" {
		return core.NewValidationError("method is required")
	}
	return nil
}

// canonicalMessage builds the string the server recomputes. Field order is fixed.
func canonicalMessage(accessKey, method string, params []any, tonce int64) string {
	return "tonce=" + strconv.FormatInt(tonce, 10) +
		"&accesskey=" + accessKey +
		"&requestmethod=post" +
		"&id=" + strconv.Itoa(core.EnvelopeID) +
		"&method=" + method +
		"&params=" + joinParams(params)
}

func signHMAC(message, secret string) string {
	h := hmac.New(sha1.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// Signer signs requests for one set of credentials, drawing tonces from a shared generator.
type Signer struct {
	creds  *core.Credentials
	tonces *TonceGenerator
}

// NewSigner creates a Signer. creds may be nil; signing then fails with a validation error.
func NewSigner(creds *core.Credentials, tonces *TonceGenerator) *Signer {
	if tonces == nil {
		tonces = NewTonceGenerator()
	}
	return &Signer{creds: creds, tonces: tonces}
}

// Check reports the validation error Sign would return for method, without
// consuming a tonce.
func (s *Signer) Check(method string) error {
	return checkSignable(s.creds, method)
}

// Sign signs method and params with a fresh tonce.
// No tonce is consumed when validation fails.
func (s *Signer) Sign(method string, params []any) (*Signature, error) {
	if err := s.Check(method); err != nil {
		return nil, err
	}
	return Sign(s.creds, method, params, s.tonces.Next())
}
