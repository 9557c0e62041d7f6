// Package sns verifies AWS SNS notification envelopes: canonical signature
// string construction, signing-certificate retrieval from an allow-listed
// host, and RSA signature verification.
package sns

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Envelope types delivered by SNS.
const (
	TypeNotification             = "Notification"
	TypeSubscriptionConfirmation = "SubscriptionConfirmation"
	TypeUnsubscribeConfirmation  = "UnsubscribeConfirmation"
)

// Sentinel errors for envelope verification.
var (
	ErrInvalidSignature = errors.New("invalid envelope signature")
	ErrUntrustedCertURL = errors.New("signing certificate URL is not trusted")
)

// Envelope is the outer signed wrapper SNS posts to HTTP endpoints.
type Envelope struct {
	Type             string `json:"Type"`
	MessageId        string `json:"MessageId"`
	Token            string `json:"Token,omitempty"`
	TopicArn         string `json:"TopicArn"`
	Subject          string `json:"Subject,omitempty"`
	Message          string `json:"Message"`
	Timestamp        string `json:"Timestamp"`
	SignatureVersion string `json:"SignatureVersion"`
	Signature        string `json:"Signature"`
	SigningCertURL   string `json:"SigningCertURL"`
	SubscribeURL     string `json:"SubscribeURL,omitempty"`
}

// Verifier checks envelope signatures against the SNS signing certificate.
// Certificates are cached by URL; SNS rotates them rarely.
type Verifier struct {
	client         *http.Client
	certHostSuffix string

	mu    sync.Mutex
	certs map[string]*x509.Certificate
}

// NewVerifier returns a Verifier. certHostSuffix restricts where signing
// certificates may be fetched from (e.g. ".amazonaws.com"); the host must
// also carry the "sns." service prefix. Outbound fetches are bounded to 10s
// and fail closed.
func NewVerifier(client *http.Client, certHostSuffix string) *Verifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Verifier{
		client:         client,
		certHostSuffix: certHostSuffix,
		certs:          make(map[string]*x509.Certificate),
	}
}

// Verify checks the envelope's signature. Any failure, including a failed
// certificate download, is treated as a verification failure.
func (v *Verifier) Verify(ctx context.Context, env *Envelope) error {
	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not valid base64", ErrInvalidSignature)
	}

	var algo x509.SignatureAlgorithm
	switch env.SignatureVersion {
	case "1":
		algo = x509.SHA1WithRSA
	case "2":
		algo = x509.SHA256WithRSA
	default:
		return fmt.Errorf("%w: unsupported signature version %q", ErrInvalidSignature, env.SignatureVersion)
	}

	cert, err := v.signingCert(ctx, env.SigningCertURL)
	if err != nil {
		return err
	}
	if err := cert.CheckSignature(algo, []byte(buildSignatureString(env)), sig); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// ConfirmSubscription fetches the envelope's SubscribeURL to complete the
// SNS subscription handshake.
func (v *Verifier) ConfirmSubscription(ctx context.Context, env *Envelope) error {
	u, err := url.Parse(env.SubscribeURL)
	if err != nil || u.Scheme != "https" {
		return fmt.Errorf("invalid subscribe URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.SubscribeURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build confirmation request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to confirm subscription: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subscription confirmation returned status %d", resp.StatusCode)
	}
	return nil
}

// buildSignatureString assembles the canonical key/value string SNS signs.
// Field order is fixed by the protocol and differs between notifications and
// confirmation handshakes. Subject is included only when present.
func buildSignatureString(env *Envelope) string {
	var b strings.Builder
	add := func(key, value string) {
		b.WriteString(key)
		b.WriteByte('\n')
		b.WriteString(value)
		b.WriteByte('\n')
	}
	add("Message", env.Message)
	add("MessageId", env.MessageId)
	if env.Type == TypeNotification {
		if env.Subject != "" {
			add("Subject", env.Subject)
		}
		add("Timestamp", env.Timestamp)
	} else {
		add("SubscribeURL", env.SubscribeURL)
		add("Timestamp", env.Timestamp)
		add("Token", env.Token)
	}
	add("TopicArn", env.TopicArn)
	add("Type", env.Type)
	return b.String()
}

func (v *Verifier) signingCert(ctx context.Context, certURL string) (*x509.Certificate, error) {
	if err := v.checkCertURL(certURL); err != nil {
		return nil, err
	}

	v.mu.Lock()
	cached, ok := v.certs[certURL]
	v.mu.Unlock()
	if ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, certURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: certificate fetch failed: %v", ErrInvalidSignature, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: certificate fetch returned status %d", ErrInvalidSignature, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%w: certificate is not PEM", ErrInvalidSignature)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	v.mu.Lock()
	v.certs[certURL] = cert
	v.mu.Unlock()
	return cert, nil
}

// checkCertURL enforces the certificate-host allow list: https only, host
// must start with "sns." and end with the configured suffix.
func (v *Verifier) checkCertURL(certURL string) error {
	u, err := url.Parse(certURL)
	if err != nil {
		return ErrUntrustedCertURL
	}
	if u.Scheme != "https" {
		return ErrUntrustedCertURL
	}
	host := u.Hostname()
	if !strings.HasPrefix(host, "sns.") || !strings.HasSuffix(host, v.certHostSuffix) {
		return ErrUntrustedCertURL
	}
	return nil
}
