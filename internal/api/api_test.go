package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"fjacquet/statement-ledger/internal/archive"
	"fjacquet/statement-ledger/internal/categorizer"
	"fjacquet/statement-ledger/internal/factory"
	"fjacquet/statement-ledger/internal/ingest"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/pdfparser"
	"fjacquet/statement-ledger/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementCSV = "Date,Description,Amount\n2024-01-05,Coffee Shop,4.50\n2024-01-06,SPOTIFY,11.99\n"

type testServer struct {
	handler http.Handler
	store   *store.MemoryStore
	dataDir string
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	logger := logging.NewMockLogger()
	st := store.NewMemoryStore()
	_, err := store.ApplySeed(context.Background(), st, store.DefaultSeed(), logger)
	require.NoError(t, err)

	ai := categorizer.NewMockAIClient(categorizer.MockReply{Text: `{"category": "Food"}`})
	cat := categorizer.NewCategorizer(st, ai, categorizer.Options{}, logger)
	parsers := factory.New(logger, pdfparser.NewMockPDFExtractor("", nil))
	dataDir := t.TempDir()

	srv := NewServer(ingest.NewService(parsers, st, cat, logger), st, archive.New(dataDir, logger), logger)
	return testServer{handler: srv.Router(), store: st, dataDir: dataDir}
}

func (ts testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Finance Dashboard API"}`, rec.Body.String())
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, uploadRequest(t, "jan.csv", statementCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"filename": "jan.csv", "transactions_processed": 2, "new_saved": 2}`, rec.Body.String())

	rec = ts.do(t, uploadRequest(t, "jan.csv", statementCSV))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filename": "jan.csv", "transactions_processed": 2, "new_saved": 0}`, rec.Body.String())

	entries, err := os.ReadDir(ts.dataDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUpload_InvalidFormat(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, uploadRequest(t, "notes.txt", "hello"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid file format")
	entries, err := os.ReadDir(ts.dataDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_MissingFile(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x"))
	rec := ts.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionsAndCorrection(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK, ts.do(t, uploadRequest(t, "jan.csv", statementCSV)).Code)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 2)
	assert.Equal(t, "SPOTIFY", txs[1].Description)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, 4.5, raw[0]["amount"])
	assert.Equal(t, 11.99, raw[1]["amount"])

	req := httptest.NewRequest(http.MethodPut, "/transactions/"+itoa(txs[1].ID), strings.NewReader(`{"category": "Entertainment"}`))
	rec = ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status": "updated", "id": `+itoa(txs[1].ID)+`, "new_category": "Entertainment"}`, rec.Body.String())

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rules []models.CategoryRule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "SPOTIFY", rules[0].Keyword)
	assert.Equal(t, "Entertainment", rules[0].Category)
}

func TestCorrection_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{name: "unknown id", path: "/transactions/999", body: `{"category": "Food"}`, status: http.StatusNotFound},
		{name: "invalid category", path: "/transactions/1", body: `{"category": "Groceries"}`, status: http.StatusBadRequest},
		{name: "bad id", path: "/transactions/abc", body: `{"category": "Food"}`, status: http.StatusBadRequest},
		{name: "bad body", path: "/transactions/1", body: `{`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestListTransactions_Empty(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListCategories(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.ElementsMatch(t, models.AllowedCategories, names)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
