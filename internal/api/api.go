// Package api exposes the ledger over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/archive"
	"fjacquet/statement-ledger/internal/factory"
	"fjacquet/statement-ledger/internal/ingest"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/store"

	"github.com/gorilla/mux"
)

// maxUploadBytes bounds the in-memory part of a multipart upload.
const maxUploadBytes = 32 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	ingest  *ingest.Service
	store   store.Store
	archive *archive.Archive
	logger  logging.Logger
}

// NewServer creates a Server.
func NewServer(svc *ingest.Service, st store.Store, arc *archive.Archive, logger logging.Logger) *Server {
	return &Server{ingest: svc, store: st, archive: arc, logger: logging.OrDefault(logger)}
}

// Router returns the routes of the API.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.rootHandler).Methods(http.MethodGet)
	r.HandleFunc("/upload", s.uploadHandler).Methods(http.MethodPost)
	r.HandleFunc("/transactions", s.listTransactionsHandler).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id}", s.correctHandler).Methods(http.MethodPut)
	r.HandleFunc("/categories", s.listCategoriesHandler).Methods(http.MethodGet)
	r.HandleFunc("/rules", s.listRulesHandler).Methods(http.MethodGet)

	return r
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// transactionResponse renders the amount as a JSON number.
type transactionResponse struct {
	ID          int64       `json:"id"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
}

func newTransactionResponses(txs []models.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionResponse{
			ID:          tx.ID,
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      json.Number(tx.Amount.String()),
			Category:    tx.Category,
		})
	}
	return out
}

type correctionRequest struct {
	Category string `json:"category"`
}

type correctionResponse struct {
	Status      string `json:"status"`
	ID          int64  `json:"id"`
	NewCategory string `json:"new_category"`
}

func (s *Server) rootHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Finance Dashboard API"})
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "expected a multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if _, err := factory.TypeForFile(header.Filename); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid file format")
		return
	}

	path, err := s.archive.Save(header.Filename, file)
	if err != nil {
		s.fail(w, err)
		return
	}
	stored, err := os.Open(path) // #nosec G304 -- path was created by the archive
	if err != nil {
		s.fail(w, err)
		return
	}
	defer stored.Close()

	res, err := s.ingest.Ingest(r.Context(), header.Filename, stored)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newTransactionResponses(txs))
}

func (s *Server) correctHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.ingest.Correct(r.Context(), id, req.Category)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, correctionResponse{Status: "updated", ID: tx.ID, NewCategory: tx.Category})
}

func (s *Server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	names, err := store.CategoryNames(r.Context(), s.store)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) listRulesHandler(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.ListRules(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if rules == nil {
		rules = []models.CategoryRule{}
	}
	s.writeJSON(w, http.StatusOK, rules)
}

// fail maps domain errors to status codes. Unknown errors are logged and
// reported as 500 without their details.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var formatErr *apperrors.InvalidFormatError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrInvalidCategory),
		errors.Is(err, apperrors.ErrUnsupportedFormat),
		errors.As(err, &formatErr):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.WithError(err).Error("Request failed")
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("Failed to write response")
	}
}
