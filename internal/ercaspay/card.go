package ercaspay

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
)

// CardDetails carries raw card data. It is never sent in the clear: the
// encryption collaborator turns it into an opaque payload first. Expiry date
// is digits only, e.g. "1223" for 12/23.
type CardDetails struct {
	CardType   string `json:"cardType,omitempty"`
	Pan        string `json:"pan"`
	ExpiryDate string `json:"expiryDate"`
	Pin        string `json:"pin,omitempty"`
	CVV        string `json:"cvv"`
	OTP        string `json:"otp,omitempty"`
	Status     string `json:"status,omitempty"`
}

// BrowserDetails is the device fingerprint collected from the payer's
// browser for 3-D Secure.
type BrowserDetails struct {
	UserAgent           string
	ChallengeWindowSize string
	ColorDepth          int
	JavaEnabled         bool
	Language            string
	ScreenHeight        int
	ScreenWidth         int
	TimeZone            string
}

// CardEncryptor produces the opaque encrypted card payload. The algorithm is
// the collaborator's concern, not the client's.
type CardEncryptor interface {
	Encrypt(card CardDetails) (string, error)
}

type cardPayload struct {
	Payload              string        `json:"payload"`
	TransactionReference string        `json:"transactionReference"`
	DeviceDetails        deviceDetails `json:"deviceDetails"`
}

type deviceDetails struct {
	PayerDeviceDto payerDeviceDto `json:"payerDeviceDto"`
}

type payerDeviceDto struct {
	Device device `json:"device"`
}

type device struct {
	Browser        string               `json:"browser"`
	BrowserDetails browserDetailsFields `json:"browserDetails"`
	IPAddress      string               `json:"ipAddress,omitempty"`
}

type browserDetailsFields struct {
	ChallengeWindowSize string `json:"3DSecureChallengeWindowSize"`
	AcceptHeaders       string `json:"acceptHeaders"`
	ColorDepth          int    `json:"colorDepth"`
	JavaEnabled         bool   `json:"javaEnabled"`
	Language            string `json:"language"`
	ScreenHeight        int    `json:"screenHeight"`
	ScreenWidth         int    `json:"screenWidth"`
	TimeZone            string `json:"timeZone"`
}

// Card submits an encrypted card payment for a transaction. The challenge
// window size defaults to FULL_SCREEN and the accept header is fixed to
// application/json. An empty ref falls back to the cached current reference.
func (c *Client) Card(ctx context.Context, card CardDetails, browser BrowserDetails, ipAddress, ref string) (*GatewayResponse, error) {
	ref, err := c.resolveRef(ref)
	if err != nil {
		return nil, err
	}
	if c.encryptor == nil {
		return nil, ErrNoCardEncryptor
	}
	encrypted, err := c.encryptor.Encrypt(card)
	if err != nil {
		return nil, fmt.Errorf("encrypt card details: %w", err)
	}

	windowSize := browser.ChallengeWindowSize
	if windowSize == "" {
		windowSize = "FULL_SCREEN"
	}

	payload := cardPayload{
		Payload:              encrypted,
		TransactionReference: ref,
		DeviceDetails: deviceDetails{
			PayerDeviceDto: payerDeviceDto{
				Device: device{
					Browser: browser.UserAgent,
					BrowserDetails: browserDetailsFields{
						ChallengeWindowSize: windowSize,
						AcceptHeaders:       "application/json",
						ColorDepth:          browser.ColorDepth,
						JavaEnabled:         browser.JavaEnabled,
						Language:            browser.Language,
						ScreenHeight:        browser.ScreenHeight,
						ScreenWidth:         browser.ScreenWidth,
						TimeZone:            browser.TimeZone,
					},
					IPAddress: ipAddress,
				},
			},
		},
	}
	return c.send(ctx, cardPath, payload), nil
}

type rsaCardEncryptor struct {
	key *rsa.PublicKey
}

// NewRSACardEncryptor builds the default encryption collaborator from a
// PEM-encoded RSA public key (PKIX or PKCS#1).
func NewRSACardEncryptor(publicKeyPEM string) (CardEncryptor, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("no PEM block in public key")
	}

	var key *rsa.PublicKey
	if parsed, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("public key is %T, want RSA", parsed)
		}
		key = rsaKey
	} else if rsaKey, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		key = rsaKey
	} else {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &rsaCardEncryptor{key: key}, nil
}

func (e *rsaCardEncryptor) Encrypt(card CardDetails) (string, error) {
	plain, err := json.Marshal(card)
	if err != nil {
		return "", err
	}
	cipher, err := rsa.EncryptPKCS1v15(rand.Reader, e.key, plain)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(cipher), nil
}
