package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"fjacquet/statement-ledger/internal/api"
	"fjacquet/statement-ledger/internal/apperrors"
	"fjacquet/statement-ledger/internal/categorizer"
	"fjacquet/statement-ledger/internal/config"
	"fjacquet/statement-ledger/internal/container"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
	"fjacquet/statement-ledger/internal/pdfparser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardStatement = `                       CARD STATEMENT
Trans Date  Post Date  Description                                   Amount
   Jul 04   Jul 07     METRO STORE MONTREAL QC Retail and Grocery      28.95
   Jul 05   Jul 08     PAYMENT THANK YOU                              500.00
   Jul 06   Jul 08     NETFLIX.COM 866-579-7172 ON Personal and Household  16.99
`

func newPipeline(t *testing.T, ai categorizer.AIClient) (*container.Container, http.Handler) {
	t.Helper()
	cfg := &config.Config{
		Log: config.LogConfig{Level: "info", Format: "text"},
		AI: config.AIConfig{
			Provider:          config.ProviderGemini,
			RequestsPerMinute: 10,
			TimeoutSeconds:    5,
			MaxAttempts:       3,
			BaseDelayMs:       1000,
			FallbackCategory:  models.CategoryOther,
		},
		Store: config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "finance.db")},
	}
	cfg.Data.Directory = filepath.Join(t.TempDir(), "data")

	c, err := container.NewContainer(context.Background(), cfg,
		container.WithLogger(logging.NewMockLogger()),
		container.WithAIClient(ai),
		container.WithRetrySleep(func(context.Context, time.Duration) error { return nil }),
		container.WithPDFExtractor(pdfparser.NewMockPDFExtractor(cardStatement, nil),
			pdfparser.WithPageCounter(func(string) (int, error) { return 1, nil })))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	srv := api.NewServer(c.GetIngestService(), c.GetStore(), c.GetArchive(), c.GetLogger())
	return c, srv.Router()
}

func upload(t *testing.T, h http.Handler, fileName string, content []byte) map[string]interface{} {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// TestPipeline_UploadCorrectReupload drives the whole loop over HTTP:
// upload, AI categorization, correction, then a second statement that the
// learned rule categorizes without calling the model.
func TestPipeline_UploadCorrectReupload(t *testing.T) {
	ai := categorizer.NewMockAIClient(
		categorizer.MockReply{Text: `{"category": "Food"}`},
		categorizer.MockReply{Text: `{"category": "Shopping"}`},
	)
	c, h := newPipeline(t, ai)
	ctx := context.Background()

	res := upload(t, h, "july.pdf", []byte("%PDF-1.7"))
	assert.Equal(t, float64(2), res["transactions_processed"])
	assert.Equal(t, float64(2), res["new_saved"])
	assert.Equal(t, 2, ai.Calls())

	txs, err := c.GetStore().ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "METRO STORE MONTREAL QC", txs[0].Description)
	assert.Equal(t, models.CategoryFood, txs[0].Category)
	assert.Equal(t, "NETFLIX.COM 866-579-7172 ON", txs[1].Description)
	assert.Equal(t, models.CategoryShopping, txs[1].Category)

	// The prompt carries the sanitized description only.
	assert.Contains(t, ai.Prompts[1], "NETFLIX.COM")

	req := httptest.NewRequest(http.MethodPut, "/transactions/"+strconv.FormatInt(txs[1].ID, 10),
		strings.NewReader(`{"category": "Entertainment"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res = upload(t, h, "july.pdf", []byte("%PDF-1.7"))
	assert.Equal(t, float64(2), res["transactions_processed"])
	assert.Equal(t, float64(0), res["new_saved"])

	csv := "Date,Description,Amount\n2024-08-06,NETFLIX.COM 866-579-7172 ON,16.99\n"
	res = upload(t, h, "august.csv", []byte(csv))
	assert.Equal(t, float64(1), res["new_saved"])
	assert.Equal(t, 2, ai.Calls())

	txs, err = c.GetStore().ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, models.CategoryEntertainment, txs[2].Category)
}

func TestPipeline_RateLimitedFallsBack(t *testing.T) {
	ai := categorizer.NewMockAIClient(categorizer.MockReply{Err: &apperrors.RateLimitError{Provider: "gemini", Err: errors.New("quota exceeded")}})
	c, h := newPipeline(t, ai)

	res := upload(t, h, "july.pdf", []byte("%PDF-1.7"))
	assert.Equal(t, float64(2), res["new_saved"])
	assert.Equal(t, 6, ai.Calls())

	txs, err := c.GetStore().ListTransactions(context.Background())
	require.NoError(t, err)
	for _, tx := range txs {
		assert.Equal(t, models.CategoryOther, tx.Category)
	}
}
