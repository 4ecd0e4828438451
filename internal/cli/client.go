package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"

	"github.com/google/uuid"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the game server. Message holds the
// server's "error" field when the body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func (c *Client) Players(ctx context.Context) (game.PlayersView, error) {
	var out game.PlayersView
	err := c.jsonRequest(ctx, http.MethodGet, "/api/players", nil, &out)
	return out, err
}

func (c *Client) CreatePlayer(ctx context.Context, name, avatar string) (game.Player, error) {
	var out game.Player
	in := map[string]any{"name": name}
	if avatar != "" {
		in["avatar"] = avatar
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/api/players", in, &out)
	return out, err
}

func (c *Client) DeletePlayer(ctx context.Context, id int) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.jsonRequest(ctx, http.MethodDelete, "/api/players/"+strconv.Itoa(id), nil, &out)
	return out.Message, err
}

func (c *Client) UpdatePlayer(ctx context.Context, id int, patch game.PlayerPatch) (game.Player, error) {
	var out game.Player
	err := c.jsonRequest(ctx, http.MethodPatch, "/api/players/"+strconv.Itoa(id), patch, &out)
	return out, err
}

func (c *Client) RecordTransaction(ctx context.Context, in game.TransactionInput) (game.TransactionResult, error) {
	var out game.TransactionResult
	body := map[string]any{
		"player_id":      in.PlayerID,
		"cash_amount":    in.CashAmount,
		"account_amount": in.AccountAmount,
	}
	if strings.TrimSpace(in.Description) != "" {
		body["description"] = in.Description
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/api/transaction", body, &out)
	return out, err
}

func (c *Client) Transactions(ctx context.Context) ([]game.Transaction, error) {
	var out []game.Transaction
	err := c.jsonRequest(ctx, http.MethodGet, "/api/transactions", nil, &out)
	return out, err
}

func (c *Client) Currency(ctx context.Context) (string, error) {
	var out struct {
		Currency string `json:"currency"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/api/currency", nil, &out)
	return out.Currency, err
}

func (c *Client) SetCurrency(ctx context.Context, code string) (string, error) {
	var out struct {
		Currency string `json:"currency"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/api/currency", map[string]any{"currency": code}, &out)
	return out.Currency, err
}

func (c *Client) Reset(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/api/reset", nil, &out)
	return out.Message, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apiError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(status int, raw []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{Status: status, Message: msg}
}
