package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(logger, game.NewService(nil, logger)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type errorBody struct {
	Error string `json:"error"`
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]bool
	if status := doJSON(t, srv, http.MethodGet, "/healthz", "", &body); status != http.StatusOK || !body["ok"] {
		t.Fatalf("status=%d body=%v", status, body)
	}
}

func TestCreateAndListPlayers(t *testing.T) {
	srv := newTestServer(t)

	var created game.Player
	status := doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"  Ann  ","currency":"EUR"}`, &created)
	if status != http.StatusCreated {
		t.Fatalf("create status=%d", status)
	}
	if created.ID != 1 || created.Name != "Ann" || created.Avatar != game.DefaultAvatar {
		t.Fatalf("created %+v", created)
	}
	if created.Cash != 238_000 || created.Account != 3_000_000 {
		t.Fatalf("currency field must be ignored, got %+v", created)
	}

	var view game.PlayersView
	if status := doJSON(t, srv, http.MethodGet, "/api/players", "", &view); status != http.StatusOK {
		t.Fatalf("list status=%d", status)
	}
	if len(view.Players) != 1 || view.Currency != game.CurrencyHUF || view.Settings.Symbol != "Ft" {
		t.Fatalf("view %+v", view)
	}
	if view.Settings.Insurances[game.InsuranceChildFuture].Payout == nil {
		t.Fatalf("settings lost insurance payout: %+v", view.Settings.Insurances)
	}
}

func TestCreatePlayerErrors(t *testing.T) {
	srv := newTestServer(t)
	if status := doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Ann"}`, nil); status != http.StatusCreated {
		t.Fatalf("seed status=%d", status)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "duplicate", body: `{"name":"Ann"}`, want: http.StatusBadRequest},
		{name: "blank", body: `{"name":"   "}`, want: http.StatusBadRequest},
		{name: "missing", body: `{}`, want: http.StatusBadRequest},
		{name: "broken json", body: `{"name":`, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var body errorBody
			if status := doJSON(t, srv, http.MethodPost, "/api/players", tc.body, &body); status != tc.want {
				t.Fatalf("status=%d want=%d", status, tc.want)
			}
			if body.Error == "" {
				t.Fatalf("missing error message")
			}
		})
	}

	var view game.PlayersView
	doJSON(t, srv, http.MethodGet, "/api/players", "", &view)
	if len(view.Players) != 1 {
		t.Fatalf("failed creates changed the roster: %+v", view.Players)
	}
}

func TestDeletePlayer(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Ann"}`, nil)

	var msg map[string]string
	if status := doJSON(t, srv, http.MethodDelete, "/api/players/1", "", &msg); status != http.StatusOK {
		t.Fatalf("delete status=%d", status)
	}
	if msg["message"] != msgPlayerDeleted {
		t.Fatalf("message %v", msg)
	}
	if status := doJSON(t, srv, http.MethodDelete, "/api/players/1", "", nil); status != http.StatusNotFound {
		t.Fatalf("second delete status=%d", status)
	}
	if status := doJSON(t, srv, http.MethodDelete, "/api/players/abc", "", nil); status != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", status)
	}
}

func TestUpdatePlayer(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Ann"}`, nil)
	doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Bob"}`, nil)

	var p game.Player
	status := doJSON(t, srv, http.MethodPut, "/api/players/1", `{"id":99,"cash":5,"hasCar":true}`, &p)
	if status != http.StatusOK {
		t.Fatalf("put status=%d", status)
	}
	if p.ID != 1 || p.Cash != 5 || !p.HasCar || p.Account != 3_000_000 {
		t.Fatalf("put got %+v", p)
	}

	p = game.Player{}
	status = doJSON(t, srv, http.MethodPatch, "/api/players/1", `{"insurances":{"pension":true}}`, &p)
	if status != http.StatusOK {
		t.Fatalf("patch status=%d", status)
	}
	if len(p.Insurances) != 1 || !p.Insurances[game.InsurancePension] {
		t.Fatalf("insurances should be replaced wholesale, got %v", p.Insurances)
	}

	if status := doJSON(t, srv, http.MethodPut, "/api/players/1", `{"name":"Bob"}`, nil); status != http.StatusBadRequest {
		t.Fatalf("rename to duplicate status=%d", status)
	}
	if status := doJSON(t, srv, http.MethodPut, "/api/players/42", `{"cash":1}`, nil); status != http.StatusNotFound {
		t.Fatalf("unknown player status=%d", status)
	}
	if status := doJSON(t, srv, http.MethodPut, "/api/players/1", `not json`, nil); status != http.StatusBadRequest {
		t.Fatalf("bad json status=%d", status)
	}
}

func TestTransactions(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Ann"}`, nil)

	var res game.TransactionResult
	status := doJSON(t, srv, http.MethodPost, "/api/transaction",
		`{"player_id":1,"cash_amount":-38000,"account_amount":1000,"description":"Bútor"}`, &res)
	if status != http.StatusOK {
		t.Fatalf("status=%d", status)
	}
	if res.Player.Cash != 200_000 || res.Player.Account != 3_001_000 {
		t.Fatalf("player %+v", res.Player)
	}
	if res.Transaction.ID != 1 || res.Transaction.PlayerName != "Ann" || res.Transaction.Description != "Bútor" {
		t.Fatalf("transaction %+v", res.Transaction)
	}

	doJSON(t, srv, http.MethodPost, "/api/transaction", `{"player_id":1,"cash_amount":1}`, &res)
	if res.Transaction.Description != game.DefaultDescription {
		t.Fatalf("default description got %q", res.Transaction.Description)
	}

	var body errorBody
	if status := doJSON(t, srv, http.MethodPost, "/api/transaction", `{"player_id":7,"cash_amount":1}`, &body); status != http.StatusNotFound {
		t.Fatalf("unknown player status=%d", status)
	}

	var list []game.Transaction
	if status := doJSON(t, srv, http.MethodGet, "/api/transactions", "", &list); status != http.StatusOK {
		t.Fatalf("list status=%d", status)
	}
	if len(list) != 2 || list[0].ID != 2 || list[1].ID != 1 {
		t.Fatalf("list should be newest first: %+v", list)
	}
}

func TestTransactionsEmptyListIsArray(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/api/transactions")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if got := string(bytes.TrimSpace(raw)); got != "[]" {
		t.Fatalf("got %s", got)
	}
}

func TestCurrency(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	doJSON(t, srv, http.MethodGet, "/api/currency", "", &body)
	if body["currency"] != game.CurrencyHUF {
		t.Fatalf("initial %v", body)
	}
	if status := doJSON(t, srv, http.MethodPost, "/api/currency", `{"currency":"EUR"}`, &body); status != http.StatusOK || body["currency"] != game.CurrencyEUR {
		t.Fatalf("set EUR status=%d body=%v", status, body)
	}
	var bad errorBody
	if status := doJSON(t, srv, http.MethodPost, "/api/currency", `{"currency":"USD"}`, &bad); status != http.StatusBadRequest {
		t.Fatalf("USD status=%d", status)
	}
	doJSON(t, srv, http.MethodGet, "/api/currency", "", &body)
	if body["currency"] != game.CurrencyEUR {
		t.Fatalf("rejected currency changed state: %v", body)
	}
	if status := doJSON(t, srv, http.MethodPost, "/api/currency", `{}`, &body); status != http.StatusOK || body["currency"] != game.CurrencyHUF {
		t.Fatalf("default status=%d body=%v", status, body)
	}
}

func TestReset(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Ann"}`, nil)
	doJSON(t, srv, http.MethodPost, "/api/currency", `{"currency":"EUR"}`, nil)

	var msg map[string]string
	if status := doJSON(t, srv, http.MethodPost, "/api/reset", "", &msg); status != http.StatusOK || msg["message"] != msgGameReset {
		t.Fatalf("status=%d msg=%v", status, msg)
	}
	var view game.PlayersView
	doJSON(t, srv, http.MethodGet, "/api/players", "", &view)
	if len(view.Players) != 0 || view.Currency != game.CurrencyHUF {
		t.Fatalf("after reset %+v", view)
	}
	var p game.Player
	doJSON(t, srv, http.MethodPost, "/api/players", `{"name":"Ann"}`, &p)
	if p.ID != 1 {
		t.Fatalf("ids should restart after reset, got %d", p.ID)
	}
}

func TestRequestIDEchoedInLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	srv := httptest.NewServer(New(logger, game.NewService(nil, logger)).Handler())
	t.Cleanup(srv.Close)

	req, _ := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"abc-123"`)) {
		t.Fatalf("request log missing id: %s", buf.String())
	}
}
