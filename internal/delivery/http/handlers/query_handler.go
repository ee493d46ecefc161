package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/LavaJover/credit-ledger/internal/delivery/http/dto/response"
	"github.com/LavaJover/credit-ledger/internal/domain"
	ledgerdto "github.com/LavaJover/credit-ledger/internal/usecase/dto/ledger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// LedgerQueries is the read side of the ledger usecase.
type LedgerQueries interface {
	GetLoan(loanID uint64) (*ledgerdto.LoanOutput, error)
	ListLoans(input *ledgerdto.ListLoansInput) (*ledgerdto.LoansOutput, error)
	GetAsset(assetID uint64) (*ledgerdto.AssetOutput, error)
	DepositCount(lender string) (*ledgerdto.DepositCountOutput, error)
	GetDeposit(lender string, index uint64) (*ledgerdto.DepositOutput, error)
	IsAuditor(address string) (*ledgerdto.AuditorOutput, error)
	Reserve() *ledgerdto.ReserveOutput
	Supply() *ledgerdto.SupplyOutput
	Balance(owner string) (*ledgerdto.BalanceOutput, error)
	Allowance(owner, spender string) (*ledgerdto.AllowanceOutput, error)
}

type HTTPQueryHandler struct {
	uc       LedgerQueries
	gatherer prometheus.Gatherer
	log      logrus.FieldLogger
}

func NewHTTPQueryHandler(uc LedgerQueries, gatherer prometheus.Gatherer, log logrus.FieldLogger) *HTTPQueryHandler {
	return &HTTPQueryHandler{uc: uc, gatherer: gatherer, log: log}
}

func (h *HTTPQueryHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id:[0-9]+}", h.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/assets/{id:[0-9]+}", h.GetAsset).Methods(http.MethodGet)
	api.HandleFunc("/lenders/{lender}/deposits", h.DepositCount).Methods(http.MethodGet)
	api.HandleFunc("/lenders/{lender}/deposits/{index:[0-9]+}", h.GetDeposit).Methods(http.MethodGet)
	api.HandleFunc("/auditors/{address}", h.IsAuditor).Methods(http.MethodGet)
	api.HandleFunc("/reserve", h.Reserve).Methods(http.MethodGet)
	api.HandleFunc("/supply", h.Supply).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{owner}/balance", h.Balance).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{owner}/allowances/{spender}", h.Allowance).Methods(http.MethodGet)
	return r
}

func (h *HTTPQueryHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, domain.ErrLoanNotFound)
		return
	}
	h.respond(w)(h.uc.GetLoan(id))
}

func (h *HTTPQueryHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	input := &ledgerdto.ListLoansInput{}
	query := r.URL.Query()
	for name, dst := range map[string]*int{"offset": &input.Offset, "limit": &input.Limit} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, domain.ErrInvalidAmount)
			return
		}
		*dst = v
	}
	h.respond(w)(h.uc.ListLoans(input))
}

func (h *HTTPQueryHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, domain.ErrAssetNotFound)
		return
	}
	h.respond(w)(h.uc.GetAsset(id))
}

func (h *HTTPQueryHandler) DepositCount(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.uc.DepositCount(mux.Vars(r)["lender"]))
}

func (h *HTTPQueryHandler) GetDeposit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.ParseUint(vars["index"], 10, 64)
	if err != nil {
		h.writeError(w, domain.ErrDepositNotFound)
		return
	}
	h.respond(w)(h.uc.GetDeposit(vars["lender"], index))
}

func (h *HTTPQueryHandler) IsAuditor(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.uc.IsAuditor(mux.Vars(r)["address"]))
}

func (h *HTTPQueryHandler) Reserve(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.uc.Reserve())
}

func (h *HTTPQueryHandler) Supply(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.uc.Supply())
}

func (h *HTTPQueryHandler) Balance(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.uc.Balance(mux.Vars(r)["owner"]))
}

func (h *HTTPQueryHandler) Allowance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.respond(w)(h.uc.Allowance(vars["owner"], vars["spender"]))
}

// respond adapts a (value, error) pair from the usecase into a response.
func (h *HTTPQueryHandler) respond(w http.ResponseWriter) func(interface{}, error) {
	return func(body interface{}, err error) {
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, body)
	}
}

func httpStatus(err error) int {
	switch domain.ClassOf(err) {
	case domain.ClassNotFound:
		return http.StatusNotFound
	case domain.ClassValidation:
		return http.StatusBadRequest
	case domain.ClassPrecondition, domain.ClassStateConflict:
		return http.StatusConflict
	case domain.ClassAuthorization:
		return http.StatusForbidden
	case domain.ClassResource:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *HTTPQueryHandler) writeError(w http.ResponseWriter, err error) {
	code := httpStatus(err)
	body := response.ErrorResponse{Success: false, Error: err.Error(), Class: string(domain.ClassOf(err))}
	if code == http.StatusInternalServerError {
		h.log.WithError(err).Error("query failed")
		body.Error = "internal error"
	}
	h.writeJSON(w, code, body)
}

func (h *HTTPQueryHandler) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.WithError(err).Warn("failed to write response")
	}
}
