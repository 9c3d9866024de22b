package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// RemoteClient speaks the whole-document protocol of the sync remote:
// GET fetches the document, PUT replaces it.
type RemoteClient interface {
	// Fetch returns ok=false when the remote has no document yet (404 or an
	// empty body).
	Fetch(ctx context.Context, cfg model.SyncConfig) (doc *model.RemoteDocument, ok bool, err error)
	Replace(ctx context.Context, cfg model.SyncConfig, doc *model.RemoteDocument) error
	// Reachable is false while the breaker is open.
	Reachable() bool
}

type remoteClient struct {
	http    *resty.Client
	breaker *CircuitBreaker
}

// NewRemoteClient builds the resty client. Only transport failures (network
// errors, non-2xx statuses) trip the breaker.
func NewRemoteClient(timeout time.Duration, cbCfg CircuitBreakerConfig) RemoteClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cbCfg.IsFailure = func(err error) bool {
		return err != nil && apperror.KindOf(err) == apperror.KindTransport
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &remoteClient{http: client, breaker: NewCircuitBreaker(cbCfg)}
}

func (c *remoteClient) Reachable() bool { return c.breaker.Reachable() }

func (c *remoteClient) request(ctx context.Context, cfg model.SyncConfig) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if cfg.User != "" || cfg.Pass != "" {
		req.SetBasicAuth(cfg.User, cfg.Pass)
	}
	return req
}

func (c *remoteClient) Fetch(ctx context.Context, cfg model.SyncConfig) (*model.RemoteDocument, bool, error) {
	const op = "remote.fetch"
	var (
		doc *model.RemoteDocument
		ok  bool
	)
	err := c.execute(op, func() error {
		resp, err := c.request(ctx, cfg).Get(cfg.URL)
		if err != nil {
			return apperror.Transport(op, err)
		}
		if resp.StatusCode() == http.StatusNotFound {
			return nil
		}
		if !resp.IsSuccess() {
			return apperror.Transport(op, fmt.Errorf("HTTP %d", resp.StatusCode()))
		}

		body := bytes.TrimSpace(resp.Body())
		if len(body) == 0 || bytes.Equal(body, []byte("null")) {
			return nil
		}
		var d model.RemoteDocument
		if err := json.Unmarshal(body, &d); err != nil {
			return apperror.Shape(op, "la respuesta remota no es un documento válido")
		}
		doc, ok = &d, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return doc, ok, nil
}

func (c *remoteClient) Replace(ctx context.Context, cfg model.SyncConfig, doc *model.RemoteDocument) error {
	const op = "remote.replace"
	return c.execute(op, func() error {
		resp, err := c.request(ctx, cfg).
			SetHeader("Content-Type", "application/json").
			SetBody(doc).
			Put(cfg.URL)
		if err != nil {
			return apperror.Transport(op, err)
		}
		if !resp.IsSuccess() {
			return apperror.Transport(op, fmt.Errorf("HTTP %d", resp.StatusCode()))
		}
		return nil
	})
}

func (c *remoteClient) execute(op string, fn func() error) error {
	err := c.breaker.Execute(fn)
	if errors.Is(err, ErrCircuitOpen) {
		return apperror.Transport(op, err)
	}
	if err != nil {
		log.Warn().Str("op", op).Str("breaker", c.breaker.State().String()).Err(err).Msg("remote call failed")
	}
	return err
}
