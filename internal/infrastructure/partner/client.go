package partner

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lovemartco/hp-automation/internal/infrastructure/config"
)

// maxResponseSize limits the response body size; partner responses are tiny
// envelopes, anything larger is garbage.
const maxResponseSize = 1 << 20

// Client errors.
var (
	// ErrTransport covers timeouts, connection failures and non-2xx
	// responses. For submission it leaves the order untracked; for
	// reconciliation the entry is retried on the next sweep.
	ErrTransport = errors.New("partner: transport failure")

	ErrMissingEndpoint    = errors.New("partner: endpoint is required")
	ErrMissingAccount     = errors.New("partner: account is required")
	ErrMissingToken       = errors.New("partner: token is required")
	ErrInvalidFingerprint = errors.New("partner: tls fingerprint must be a SHA-256 hex digest")
)

// Client sends envelopes to the partner endpoint.
type Client struct {
	endpoint   string
	codec      *Codec
	httpClient *http.Client
}

// NewClient creates a partner client from configuration. When a TLS
// fingerprint is configured, the client pins the partner's certificate by
// SHA-256 digest instead of chain validation; the override is scoped to this
// client's transport and never touches other traffic.
func NewClient(cfg config.PartnerConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if cfg.Account == "" {
		return nil, ErrMissingAccount
	}
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.TLSFingerprint != "" {
		transport, err := pinnedTransport(cfg.TLSFingerprint)
		if err != nil {
			return nil, err
		}
		httpClient.Transport = transport
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		codec:      NewCodec(Credentials{Account: cfg.Account, Token: cfg.Token}, cfg.DefaultShipCode),
		httpClient: httpClient,
	}, nil
}

// Codec returns the codec bound to this client's credentials.
func (c *Client) Codec() *Codec {
	return c.codec
}

// Submit posts a submission envelope and returns the raw response body.
func (c *Client) Submit(ctx context.Context, envelope []byte) ([]byte, error) {
	return c.post(ctx, envelope)
}

// QueryStatus posts a status query for the reference and returns the raw
// response body.
func (c *Client) QueryStatus(ctx context.Context, reference string) ([]byte, error) {
	envelope, err := c.codec.EncodeStatusQuery(reference)
	if err != nil {
		return nil, fmt.Errorf("partner: encode status query: %w", err)
	}
	return c.post(ctx, envelope)
}

// post sends the envelope as a raw XML body. The envelope bytes must reach
// the partner unmodified.
func (c *Client) post(ctx context.Context, envelope []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("partner: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}

	return body, nil
}

// pinnedTransport builds an HTTP transport that accepts exactly the
// certificate whose SHA-256 fingerprint matches the configured pin. Chain
// validation is replaced, not skipped: a presented chain that does not
// contain the pinned certificate is rejected.
func pinnedTransport(fingerprint string) (*http.Transport, error) {
	normalized := strings.ToLower(strings.ReplaceAll(fingerprint, ":", ""))
	pin, err := hex.DecodeString(normalized)
	if err != nil || len(pin) != sha256.Size {
		return nil, ErrInvalidFingerprint
	}

	return &http.Transport{
		TLSClientConfig: &tls.Config{
			// Chain verification is handled by VerifyPeerCertificate below.
			InsecureSkipVerify: true,
			VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
				for _, rawCert := range rawCerts {
					digest := sha256.Sum256(rawCert)
					if bytes.Equal(digest[:], pin) {
						return nil
					}
				}
				return fmt.Errorf("partner: presented certificate chain does not match pinned fingerprint")
			},
		},
	}, nil
}
