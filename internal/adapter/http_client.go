package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/finkeeper/go-ledger-sync/internal/utils"
	"github.com/finkeeper/go-ledger-sync/models"
)

const tokenIssuer = "ledger-sync"

type HTTPClientConfig struct {
	BaseURL  string
	ClientID string
	// SignKey is the deployment-wide shared secret used to mint bearer
	// tokens. It authenticates the client to the remote; it never touches
	// the encryption key derived from the user password.
	SignKey string
	Timeout time.Duration
}

type httpRemoteAdapter struct {
	client   *resty.Client
	clientID string
	signKey  string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewHTTPRemoteAdapter(cfg HTTPClientConfig) RemoteAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpRemoteAdapter{client: cli, clientID: cfg.ClientID, signKey: cfg.SignKey}
}

func (h *httpRemoteAdapter) CreateLedger(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error) {
	resp, err := h.authedRequest(ctx)
	if err != nil {
		return models.Ledger{}, err
	}

	res, err := resp.
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/ledgers")
	if err != nil {
		return models.Ledger{}, fmt.Errorf("create ledger request: %w: %w", ErrRemoteUnreachable, err)
	}
	if res.StatusCode() == http.StatusConflict {
		return models.Ledger{}, fmt.Errorf("%w: %s", ErrLedgerExists, req.LedgerID)
	}
	if err = mapHTTPError(res); err != nil {
		return models.Ledger{}, err
	}

	var ledger models.Ledger
	if err = json.Unmarshal(res.Body(), &ledger); err != nil {
		return models.Ledger{}, fmt.Errorf("decode create ledger response: %w", err)
	}

	return ledger, nil
}

func (h *httpRemoteAdapter) GetLedger(ctx context.Context, ledgerID string) (models.Ledger, error) {
	resp, err := h.authedRequest(ctx)
	if err != nil {
		return models.Ledger{}, err
	}

	res, err := resp.Get("/api/ledgers/" + ledgerID)
	if err != nil {
		return models.Ledger{}, fmt.Errorf("get ledger request: %w: %w", ErrRemoteUnreachable, err)
	}
	if err = mapHTTPError(res); err != nil {
		return models.Ledger{}, err
	}

	var ledger models.Ledger
	if err = json.Unmarshal(res.Body(), &ledger); err != nil {
		return models.Ledger{}, fmt.Errorf("decode get ledger response: %w", err)
	}

	return ledger, nil
}

func (h *httpRemoteAdapter) FetchCanonical(ctx context.Context, ledgerID string) (models.CanonicalBlob, error) {
	resp, err := h.authedRequest(ctx)
	if err != nil {
		return models.CanonicalBlob{}, err
	}

	res, err := resp.Get("/api/ledgers/" + ledgerID + "/canonical")
	if err != nil {
		return models.CanonicalBlob{}, fmt.Errorf("fetch canonical request: %w: %w", ErrRemoteUnreachable, err)
	}
	if err = mapHTTPError(res); err != nil {
		return models.CanonicalBlob{}, err
	}

	var blob models.CanonicalBlob
	if err = json.Unmarshal(res.Body(), &blob); err != nil {
		return models.CanonicalBlob{}, fmt.Errorf("decode canonical response: %w", err)
	}

	return blob, nil
}

func (h *httpRemoteAdapter) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	req.ClientID = h.clientID

	resp, err := h.authedRequest(ctx)
	if err != nil {
		return models.PushResponse{}, err
	}

	res, err := resp.
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/ledgers/" + req.LedgerID + "/push")
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("push request: %w: %w", ErrRemoteUnreachable, err)
	}
	if err = mapHTTPError(res); err != nil {
		return models.PushResponse{}, err
	}

	var pushed models.PushResponse
	if err = json.Unmarshal(res.Body(), &pushed); err != nil {
		return models.PushResponse{}, fmt.Errorf("decode push response: %w", err)
	}

	return pushed, nil
}

func (h *httpRemoteAdapter) AcquireLease(ctx context.Context, ledgerID string, ttl time.Duration) (models.LeaseGrant, error) {
	resp, err := h.authedRequest(ctx)
	if err != nil {
		return models.LeaseGrant{}, err
	}

	res, err := resp.
		SetHeader("Content-Type", "application/json").
		SetBody(models.AcquireLeaseRequest{TTLSeconds: int64(ttl / time.Second)}).
		Post("/api/ledgers/" + ledgerID + "/lease")
	if err != nil {
		return models.LeaseGrant{}, fmt.Errorf("acquire lease request: %w: %w", ErrRemoteUnreachable, err)
	}
	if err = mapHTTPError(res); err != nil {
		return models.LeaseGrant{}, err
	}

	var grant models.LeaseGrant
	if err = json.Unmarshal(res.Body(), &grant); err != nil {
		return models.LeaseGrant{}, fmt.Errorf("decode lease response: %w", err)
	}

	return grant, nil
}

func (h *httpRemoteAdapter) ReleaseLease(ctx context.Context, ledgerID string) error {
	resp, err := h.authedRequest(ctx)
	if err != nil {
		return err
	}

	res, err := resp.Delete("/api/ledgers/" + ledgerID + "/lease")
	if err != nil {
		return fmt.Errorf("release lease request: %w: %w", ErrRemoteUnreachable, err)
	}

	return mapHTTPError(res)
}

// authedRequest returns a request carrying a fresh bearer token. Tokens are
// minted locally from the shared sign key and cached until shortly before
// expiry.
func (h *httpRemoteAdapter) authedRequest(ctx context.Context) (*resty.Request, error) {
	token, err := h.bearerToken()
	if err != nil {
		return nil, err
	}

	return h.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token), nil
}

func (h *httpRemoteAdapter) bearerToken() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.token != "" && time.Until(h.tokenExpiry) > time.Minute {
		return h.token, nil
	}

	const tokenLifetime = time.Hour
	token, err := utils.GenerateJWTToken(tokenIssuer, h.clientID, tokenLifetime, h.signKey)
	if err != nil {
		return "", fmt.Errorf("mint bearer token: %w", err)
	}

	h.token = token.SignedString
	h.tokenExpiry = time.Now().Add(tokenLifetime)

	return h.token, nil
}
