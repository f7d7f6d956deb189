package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"mintforge/core/state"
	"mintforge/crypto"
	"mintforge/ledger"
	"mintforge/native/assets"
	"mintforge/native/auction"
	"mintforge/native/rewards"
	"mintforge/storage"
)

const testToken = "secret-token"

var (
	testAuthority = [20]byte{0xA0}
	testEngineID  = [20]byte{0xE0}
	testCaller    = [20]byte{0xC0}
)

func callerString() string {
	return crypto.MustNewAddress(crypto.ForgePrefix, testCaller[:]).String()
}

func newTestServer(t *testing.T) (*Server, *auction.Source) {
	t.Helper()
	t.Setenv("MINTFORGE_RPC_TOKEN", testToken)

	db := storage.NewMemDB()
	t.Cleanup(func() { _ = db.Close() })
	manager := state.NewManager(db)
	token := ledger.NewToken(manager)
	source := auction.NewSource(manager, testAuthority)
	registry := assets.NewRegistry(manager)

	engine := rewards.NewEngine(testAuthority)
	engine.SetLedger(token)
	engine.SetSharesSource(source)
	engine.SetOwnershipRegistry(registry)
	engine.SetHoldingState(manager)
	engine.SetIdentity(testEngineID)
	if err := engine.SetMaxSupply(testAuthority, big.NewInt(1000)); err != nil {
		t.Fatalf("set max supply: %v", err)
	}
	if err := engine.UpdateAuctionConfig(testAuthority, rewards.AuctionConfig{
		Enabled:       true,
		BaseWeightBps: 5000,
	}); err != nil {
		t.Fatalf("update auction config: %v", err)
	}
	if err := source.AuthorizeConsumer(testAuthority, testEngineID); err != nil {
		t.Fatalf("authorize consumer: %v", err)
	}

	return NewServer(engine, source, registry, nil), source
}

func post(t *testing.T, handler http.Handler, token, method string, params interface{}) (*httptest.ResponseRecorder, RPCResponse) {
	t.Helper()
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		payload["params"] = []interface{}{params}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp RPCResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v (%s)", err, rec.Body.String())
	}
	return rec, resp
}

func TestPreviewReward(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Router()

	_, resp := post(t, handler, "", "rewards_previewReward", map[string]interface{}{
		"shares":         "4",
		"conditionCount": 0,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type: %T", resp.Result)
	}
	if result["amount"] != "2" {
		t.Fatalf("unexpected amount: %v", result["amount"])
	}
}

func TestClaimRequiresToken(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Router()

	rec, resp := post(t, handler, "", "rewards_claimBaseAuction", map[string]interface{}{
		"caller": callerString(),
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("expected unauthorized error, got %+v", resp.Error)
	}
}

func TestClaimBaseAuction(t *testing.T) {
	server, source := newTestServer(t)
	handler := server.Router()
	if err := source.Credit(testAuthority, testCaller, big.NewInt(4)); err != nil {
		t.Fatalf("credit shares: %v", err)
	}

	_, resp := post(t, handler, testToken, "rewards_claimBaseAuction", map[string]interface{}{
		"caller": callerString(),
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type: %T", resp.Result)
	}
	if result["minted"] != "2" {
		t.Fatalf("unexpected minted amount: %v", result["minted"])
	}
}

func TestClaimRejectionSurfacesNamedCondition(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Router()

	// No holding program configured.
	_, resp := post(t, handler, testToken, "rewards_claimHolding", map[string]interface{}{
		"caller":   callerString(),
		"assetIds": []uint64{1},
	})
	if resp.Error == nil || resp.Error.Code != codeClaimRejected {
		t.Fatalf("expected claim rejection, got %+v", resp.Error)
	}
}

func TestVerifyConditionEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Router()

	// Zero root: verification always reports false.
	_, resp := post(t, handler, "", "rewards_verifyCondition", map[string]interface{}{
		"claimant":       callerString(),
		"proof":          []string{},
		"conditionCount": 1,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type: %T", resp.Result)
	}
	if result["valid"] != false {
		t.Fatalf("expected invalid result, got %v", result["valid"])
	}
}

func TestGetSummary(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Router()

	_, resp := post(t, handler, "", "rewards_getSummary", nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type: %T", resp.Result)
	}
	if result["maxSupply"] != "1000" {
		t.Fatalf("unexpected max supply: %v", result["maxSupply"])
	}
	if result["auctionEnabled"] != true {
		t.Fatalf("expected auction enabled, got %v", result["auctionEnabled"])
	}
}

func TestMethodNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Router()

	rec, resp := post(t, handler, "", "rewards_unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method not found, got %+v", resp.Error)
	}
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestClaimRateLimited(t *testing.T) {
	server, source := newTestServer(t)
	handler := server.Router()

	limited := false
	for i := 0; i < claimRateBurst+2; i++ {
		if err := source.Credit(testAuthority, testCaller, big.NewInt(2)); err != nil {
			t.Fatalf("credit shares: %v", err)
		}
		rec, resp := post(t, handler, testToken, "rewards_claimBaseAuction", map[string]interface{}{
			"caller": callerString(),
		})
		if rec.Code == http.StatusTooManyRequests {
			if resp.Error == nil || resp.Error.Code != codeRateLimited {
				t.Fatalf("expected rate limit error, got %+v", resp.Error)
			}
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected a rate-limited response within %d requests", claimRateBurst+2)
	}
}

func TestGetShares(t *testing.T) {
	server, source := newTestServer(t)
	handler := server.Router()
	if err := source.Credit(testAuthority, testCaller, big.NewInt(7)); err != nil {
		t.Fatalf("credit shares: %v", err)
	}

	_, resp := post(t, handler, "", "auction_getShares", map[string]interface{}{
		"bidder": callerString(),
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type: %T", resp.Result)
	}
	if result["shares"] != "7" {
		t.Fatalf("unexpected shares: %v", result["shares"])
	}
}

func TestGetOwner(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Router()
	if err := server.registry.Mint(42, testCaller); err != nil {
		t.Fatalf("mint asset: %v", err)
	}

	_, resp := post(t, handler, "", "assets_getOwner", map[string]interface{}{
		"assetId": 42,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result type: %T", resp.Result)
	}
	if result["owner"] != callerString() {
		t.Fatalf("unexpected owner: %v", result["owner"])
	}

	_, resp = post(t, handler, "", "assets_getOwner", map[string]interface{}{
		"assetId": 43,
	})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params for unknown asset, got %+v", resp.Error)
	}
}
