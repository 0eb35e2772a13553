//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=mock/client.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/glyphdb/gateway/core"
)

const defaultTimeout = 30 * time.Second

var tracer = otel.Tracer("client")

// Client is the transport collaborator: it carries canonical command text
// to the store and nothing else. Retry and backoff, if wanted, belong
// here, not in the gateway; none is performed today.
type Client interface {
	Execute(ctx context.Context, commandText string, token string) (json.RawMessage, error)
}

type client struct {
	endpoint string
	timeout  time.Duration
}

// NewClient creates a client against the store's exec endpoint. A zero
// timeout falls back to the 30s default.
func NewClient(endpoint string, timeout time.Duration) Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &client{endpoint: endpoint, timeout: timeout}
}

// Execute sends one command and returns the raw result payload. Upstream
// failures propagate verbatim as ErrorDatabase. A deadline maps to
// ErrorTimeout: the outcome on the remote side is unknown.
func (c *client) Execute(ctx context.Context, commandText string, token string) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Client.Execute")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, strings.NewReader(commandText))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+token)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := new(http.Client).Do(req)
	if err != nil {
		span.RecordError(err)
		if isTimeout(err) {
			return nil, core.NewErrorTimeout()
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewErrorDatabase(resp.StatusCode, string(body))
	}

	return json.RawMessage(body), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
