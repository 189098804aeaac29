// Package api exposes the kernel's epoch transition over HTTP, following
// the teacher's pkg/server handler shape: a struct wrapping its
// dependencies plus a *log.Logger, one exported Handle* method per
// route, and writeJSON/writeError helpers that always emit
// application/json.
package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/certen/kernel-validator/internal/kernel/epoch"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
	"github.com/certen/kernel-validator/internal/kernel/transition"
	"github.com/certen/kernel-validator/internal/store"
	"github.com/certen/kernel-validator/internal/telemetry"
	"github.com/certen/kernel-validator/pkg/bundleio"
)

// KernelHashProvider returns the kernel_hash the node expects epoch
// bundles to be signed and stamped against.
type KernelHashProvider interface {
	KernelHash() [32]byte
}

// Handlers serves the kernel's HTTP surface: epoch application, epoch
// queries, and health/readiness.
type Handlers struct {
	store      *store.EpochStore
	auditStore *store.AuditStore // may be nil when Postgres mirroring is disabled
	kernelHash KernelHashProvider
	metrics    *telemetry.Metrics
	logger     *log.Logger
}

// Config configures a Handlers instance.
type Config struct {
	Store      *store.EpochStore
	AuditStore *store.AuditStore
	KernelHash KernelHashProvider
	Metrics    *telemetry.Metrics
	Logger     *log.Logger
}

// NewHandlers constructs the HTTP handler set.
func NewHandlers(cfg Config) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NewLogger("API")
	}
	return &Handlers{
		store:      cfg.Store,
		auditStore: cfg.AuditStore,
		kernelHash: cfg.KernelHash,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// Mux builds the HTTP routing table. Metrics are served on the same mux
// under /metrics. internal/config's metrics_addr is not read by main.go,
// so no separate metrics listener is started.
func (h *Handlers) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/epochs/apply", h.HandleApplyEpoch)
	mux.HandleFunc("/v1/epochs/latest", h.HandleGetLatestEpoch)
	mux.HandleFunc("/v1/epochs/", h.HandleGetEpoch)
	mux.HandleFunc("/healthz", h.HandleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

type applyEpochRequest struct {
	Bundle bundleio.BundleDTO `json:"bundle"`
}

type epochResponse struct {
	EpochNumber         uint64 `json:"epoch_number"`
	StateRoot           string `json:"state_root"`
	PreviousRoot        string `json:"previous_root"`
	ValidatorSetRoot    string `json:"validator_set_root"`
	ImpactPoolRoot      string `json:"impact_pool_root"`
	BondPoolRoot        string `json:"bond_pool_root"`
	KernelHash          string `json:"kernel_hash"`
	EntropyMetricScaled string `json:"entropy_metric_scaled"`
}

// etag computes an HTTP ETag for an epoch response body. Keccak256 has
// no relation to the kernel's own SHA-256-based commitments — it is
// used here purely as a convenient, collision-resistant cache-key hash
// for HTTP caching, not as part of any consensus-relevant computation.
func etag(body []byte) string {
	sum := crypto.Keccak256(body)
	return `"` + hex.EncodeToString(sum) + `"`
}

func toEpochResponse(s epoch.State) epochResponse {
	return epochResponse{
		EpochNumber:         s.EpochNumber,
		StateRoot:           bundleio.DigestToHex(s.StateRoot),
		PreviousRoot:        bundleio.DigestToHex(s.PreviousRoot),
		ValidatorSetRoot:    bundleio.DigestToHex(s.ValidatorSetRoot),
		ImpactPoolRoot:      bundleio.DigestToHex(s.ImpactPoolRoot),
		BondPoolRoot:        bundleio.DigestToHex(s.BondPoolRoot),
		KernelHash:          bundleio.DigestToHex(s.KernelHash),
		EntropyMetricScaled: s.EntropyMetricScaled,
	}
}

// HandleApplyEpoch handles POST /v1/epochs/apply: decode a witness
// bundle, apply it against the latest committed epoch, and persist the
// result. CONCURRENCY: like the teacher's LedgerStore, epoch application
// must run from a single writer; this handler does not itself
// serialize concurrent callers and assumes it is mounted behind a
// process that enforces that (see main.go).
func (h *Handlers) HandleApplyEpoch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only POST is allowed")
		return
	}

	// requestID only traces this submission through logs and the response
	// header; it never enters the bundle or the kernel, since a random
	// value inside the transition function would break determinism.
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set("X-Request-ID", requestID)

	var req applyEpochRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	bundle, err := bundleio.Decode(req.Bundle)
	if err != nil {
		h.logger.Printf("request %s: invalid bundle: %v", requestID, err)
		h.writeError(w, http.StatusBadRequest, "INVALID_BUNDLE", err.Error())
		return
	}

	prev, err := h.store.Latest()
	if errors.Is(err, store.ErrNotFound) {
		prev = epoch.Genesis()
	} else if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	start := time.Now()
	next, err := transition.ApplyEpoch(prev, bundle, h.kernelHash.KernelHash())
	if h.metrics != nil {
		h.metrics.EpochApplySeconds.Observe(time.Since(start).Seconds())
		h.metrics.QuorumSignatures.Observe(float64(len(bundle.ValidatorSigs)))
	}
	if err != nil {
		h.logger.Printf("request %s: rejected: %v", requestID, err)
		h.handleKernelError(w, err)
		return
	}

	if err := h.store.Put(next); err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if h.auditStore != nil {
		if err := h.auditStore.RecordEpoch(r.Context(), next); err != nil {
			h.logger.Printf("audit mirror failed for epoch %d: %v", next.EpochNumber, err)
		}
	}
	if h.metrics != nil {
		h.metrics.EpochsApplied.Inc()
		h.metrics.CurrentEpoch.Set(float64(next.EpochNumber))
	}

	h.logger.Printf("request %s: committed epoch %d", requestID, next.EpochNumber)
	h.writeJSON(w, http.StatusOK, toEpochResponse(next))
}

// HandleGetLatestEpoch handles GET /v1/epochs/latest.
func (h *Handlers) HandleGetLatestEpoch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}
	state, err := h.store.Latest()
	if errors.Is(err, store.ErrNotFound) {
		h.writeCacheableJSON(w, r, toEpochResponse(epoch.Genesis()))
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	h.writeCacheableJSON(w, r, toEpochResponse(state))
}

// HandleGetEpoch handles GET /v1/epochs/{number}.
func (h *Handlers) HandleGetEpoch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}
	numberStr := r.URL.Path[len("/v1/epochs/"):]
	number, err := strconv.ParseUint(numberStr, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_EPOCH_NUMBER", "epoch number must be a non-negative integer")
		return
	}
	state, err := h.store.Get(number)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "EPOCH_NOT_FOUND", "no committed epoch with that number")
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	h.writeCacheableJSON(w, r, toEpochResponse(state))
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"status": "ok"}
	if h.auditStore != nil {
		audit := h.auditStore.Health(r.Context())
		status["audit_store"] = audit
		if !audit.Healthy {
			status["status"] = "degraded"
		}
	}
	h.writeJSON(w, http.StatusOK, status)
}

// kindToStatus maps a kernelerr.Kind to the HTTP status code a client
// should treat as a definitive, retry-or-don't signal: 4xx for bundle
// content the caller must fix, 409 for chain-position conflicts, 501 for
// NotImplemented, and 500 for any Kind not listed here.
func kindToStatus(kind kernelerr.Kind) int {
	switch kind {
	case kernelerr.InvalidSignature, kernelerr.InvalidMerkleWitness, kernelerr.InvalidVdfProof,
		kernelerr.InvalidSerialization, kernelerr.DuplicateKey, kernelerr.BondTooSmall,
		kernelerr.PayloadLimitExceeded, kernelerr.KernelHashMismatch:
		return http.StatusUnprocessableEntity
	case kernelerr.FraudWindowExpired:
		return http.StatusConflict
	case kernelerr.MathOverflow, kernelerr.DivisionByZero:
		return http.StatusBadRequest
	case kernelerr.NotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) handleKernelError(w http.ResponseWriter, err error) {
	var kErr *kernelerr.Error
	if errors.As(err, &kErr) {
		if h.metrics != nil {
			h.metrics.EpochsRejected.WithLabelValues(kErr.Kind.String()).Inc()
		}
		h.writeError(w, kindToStatus(kErr.Kind), kErr.Kind.String(), kErr.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
}

// writeCacheableJSON serves a GET response with an ETag derived from the
// encoded body, honoring If-None-Match with a bodyless 304 so pollers
// (light clients refreshing /v1/epochs/latest) don't repay the transfer
// cost for a state they already have.
func (h *Handlers) writeCacheableJSON(w http.ResponseWriter, r *http.Request, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "ENCODE_ERROR", err.Error())
		return
	}
	tag := etag(body)
	w.Header().Set("ETag", tag)
	if r.Header.Get("If-None-Match") == tag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Printf("error writing response: %v", err)
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("error encoding response: %v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
