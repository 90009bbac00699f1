package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"settle_go/internal/domain"
	"settle_go/internal/infra"
	"settle_go/internal/infra/wallet"
)

// Client is the ledger node REST client (boundary layer). All amount
// normalization from base units happens here; the rest of the engine
// only sees decimal native amounts.
type Client struct {
	baseURL    string
	apiKey     string
	asset      string
	scale      decimal.Decimal
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a ledger client from config.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL: cfg.Ledger.RestURL,
		apiKey:  cfg.Ledger.APIKey,
		asset:   cfg.Ledger.Asset,
		scale:   decimal.NewFromInt(cfg.Ledger.BaseUnitScale),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		logger: slog.Default().With("module", "ledger_client"),
	}
}

// QueryTransfersTo returns transactions addressed to address, newest
// first, normalized to decimal native amounts. Transport failures are
// retriable; a malformed response is not.
func (c *Client) QueryTransfersTo(ctx context.Context, address string) ([]domain.Transfer, error) {
	path := "/v1/accounts/" + address + "/transfers?order=desc"
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, domain.NewLedgerError("query", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewLedgerError("query", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, domain.NewLedgerError("query", fmt.Errorf("status=%d body=%s", resp.StatusCode, bodyBytes))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewFatalLedgerError("query", fmt.Errorf("status=%d body=%s", resp.StatusCode, bodyBytes))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, domain.NewFatalLedgerError("query", fmt.Errorf("failed to parse response: %w", err))
	}
	if apiResp.Code != codeOK {
		return nil, domain.NewFatalLedgerError("query", fmt.Errorf("code=%s msg=%s", apiResp.Code, apiResp.Msg))
	}

	var records []txRecord
	if err := json.Unmarshal(apiResp.Data, &records); err != nil {
		return nil, domain.NewFatalLedgerError("query", fmt.Errorf("failed to parse transfers: %w", err))
	}

	transfers := make([]domain.Transfer, 0, len(records))
	for _, rec := range records {
		if rec.To != address {
			continue
		}
		amount, err := c.normalizeAmount(rec.Amount)
		if err != nil {
			c.logger.Warn("Skipping transfer with malformed amount",
				slog.String("hash", rec.Hash), slog.String("amount", rec.Amount))
			continue
		}
		transfers = append(transfers, domain.Transfer{
			Sender:    rec.From,
			Amount:    amount,
			Asset:     rec.Asset,
			TxHash:    rec.Hash,
			Timestamp: time.Unix(rec.Timestamp, 0).UTC(),
		})
	}
	return transfers, nil
}

// BroadcastSweep signs a full-balance sweep with the order's key and
// submits it. The node resolves the current balance; the engine never
// specifies a sub-amount.
func (c *Client) BroadcastSweep(ctx context.Context, privateKeySeed, destination string) (domain.TxResult, error) {
	priv, err := wallet.KeyFromSeed(privateKeySeed)
	if err != nil {
		return domain.TxResult{}, domain.NewFatalLedgerError("broadcast", err)
	}
	pub := priv.Public().(ed25519.PublicKey)

	ts := time.Now().Unix()
	payload := destination + "|" + strconv.FormatInt(ts, 10)
	sig := ed25519.Sign(priv, []byte(payload))

	reqBody := sweepRequest{
		Address:     wallet.DeriveAddress(pub),
		Destination: destination,
		PublicKey:   hex.EncodeToString(pub),
		Timestamp:   ts,
		Signature:   hex.EncodeToString(sig),
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/transfers/sweep", reqBody)
	if err != nil {
		return domain.TxResult{}, domain.NewLedgerError("broadcast", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return domain.TxResult{}, domain.NewFatalLedgerError("broadcast",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, bodyBytes))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return domain.TxResult{}, domain.NewFatalLedgerError("broadcast", fmt.Errorf("failed to parse response: %w", err))
	}
	if apiResp.Code != codeOK {
		return domain.TxResult{}, domain.NewFatalLedgerError("broadcast",
			fmt.Errorf("code=%s msg=%s", apiResp.Code, apiResp.Msg))
	}

	var result sweepResponse
	if err := json.Unmarshal(apiResp.Data, &result); err != nil {
		return domain.TxResult{}, domain.NewFatalLedgerError("broadcast", fmt.Errorf("failed to parse sweep result: %w", err))
	}

	c.logger.Info("Sweep broadcast", "hash", result.Hash, "destination", destination)
	return domain.TxResult{Hash: result.Hash}, nil
}

// normalizeAmount converts a base-unit integer string to the decimal
// native amount using the configured scale.
func (c *Client) normalizeAmount(baseAmount string) (decimal.Decimal, error) {
	raw, err := decimal.NewFromString(baseAmount)
	if err != nil {
		return decimal.Zero, err
	}
	return raw.Div(c.scale), nil
}

// doRequest handles auth headers and serialization
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	return c.httpClient.Do(req)
}

// Asset returns the native asset code this client is configured for.
func (c *Client) Asset() string {
	return c.asset
}
