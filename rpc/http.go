package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"mintforge/native/assets"
	"mintforge/native/auction"
	"mintforge/native/rewards"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB

	// Claim methods mutate state; each source gets a small sustained budget.
	claimRatePerSecond = 1
	claimRateBurst     = 5
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020
	codeClaimRejected  = -32030
)

// Server exposes the reward engine over JSON-RPC 2.0.
type Server struct {
	engine    *rewards.Engine
	source    *auction.Source
	registry  *assets.Registry
	log       *slog.Logger
	authToken string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewServer wires the RPC surface. The bearer token protecting claim methods
// is read from MINTFORGE_RPC_TOKEN; when unset, claim methods are rejected.
func NewServer(engine *rewards.Engine, source *auction.Source, registry *assets.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:    engine,
		source:    source,
		registry:  registry,
		log:       logger,
		authToken: strings.TrimSpace(os.Getenv("MINTFORGE_RPC_TOKEN")),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Router assembles the HTTP routes: the JSON-RPC endpoint plus health and
// metrics.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: &RPCError{Code: code, Message: message}}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "unable to read request body")
		return
	}
	if len(body) > maxRequestBytes {
		writeError(w, http.StatusRequestEntityTooLarge, nil, codeInvalidRequest, "request body too large")
		return
	}

	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "malformed JSON-RPC request")
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported JSON-RPC version")
		return
	}

	requestID := uuid.NewString()
	log := s.log.With("method", req.Method, "requestId", requestID)

	if isClaimMethod(req.Method) {
		if !s.authorized(r) {
			log.Warn("unauthorized claim attempt")
			writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "missing or invalid bearer token")
			return
		}
		if !s.allow(clientHost(r)) {
			log.Warn("claim rate limited")
			writeError(w, http.StatusTooManyRequests, req.ID, codeRateLimited, "too many claim requests")
			return
		}
	}

	result, rpcErr := s.dispatch(req)
	if rpcErr != nil {
		log.Info("rpc call failed", "code", rpcErr.Code, "error", rpcErr.Message)
		writeError(w, statusForCode(rpcErr.Code), req.ID, rpcErr.Code, rpcErr.Message)
		return
	}
	log.Debug("rpc call served")
	writeResult(w, req.ID, result)
}

func (s *Server) dispatch(req RPCRequest) (interface{}, *RPCError) {
	switch req.Method {
	case "rewards_previewReward":
		return s.handlePreviewReward(req.Params)
	case "rewards_verifyCondition":
		return s.handleVerifyCondition(req.Params)
	case "rewards_getSummary":
		return s.handleGetSummary()
	case "auction_getShares":
		return s.handleGetShares(req.Params)
	case "assets_getOwner":
		return s.handleGetOwner(req.Params)
	case "rewards_claimBaseAuction":
		return s.handleClaimBaseAuction(req.Params)
	case "rewards_claimWeightedAuction":
		return s.handleClaimWeightedAuction(req.Params)
	case "rewards_claimHolding":
		return s.handleClaimHolding(req.Params)
	default:
		return nil, &RPCError{Code: codeMethodNotFound, Message: "method not found"}
	}
}

func isClaimMethod(method string) bool {
	switch method {
	case "rewards_claimBaseAuction", "rewards_claimWeightedAuction", "rewards_claimHolding":
		return true
	default:
		return false
	}
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return false
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	return strings.TrimSpace(header[len(prefix):]) == s.authToken
}

func (s *Server) allow(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(claimRatePerSecond), claimRateBurst)
		s.limiters[host] = limiter
	}
	return limiter.Allow()
}

func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func statusForCode(code int) int {
	switch code {
	case codeUnauthorized:
		return http.StatusUnauthorized
	case codeRateLimited:
		return http.StatusTooManyRequests
	case codeMethodNotFound:
		return http.StatusNotFound
	case codeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func rpcErrorFor(err error) *RPCError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rewards.ErrMintLocked),
		errors.Is(err, rewards.ErrOwnerMintLocked),
		errors.Is(err, rewards.ErrAuctionRewardsNotSet),
		errors.Is(err, rewards.ErrAuctionContractNotConfigured),
		errors.Is(err, rewards.ErrWrongRewardsClaim),
		errors.Is(err, rewards.ErrOwnership),
		errors.Is(err, rewards.ErrHoldingRewardsNotSet),
		errors.Is(err, rewards.ErrMaxSupplyExceeded),
		errors.Is(err, rewards.ErrUnauthorized):
		return &RPCError{Code: codeClaimRejected, Message: err.Error()}
	default:
		return &RPCError{Code: codeServerError, Message: err.Error()}
	}
}
