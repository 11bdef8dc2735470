package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradeledger/src/assistant"
	"github.com/username/tradeledger/src/config"
	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/services"
)

const historyCSV = `"Date","Action","Symbol","Description","Quantity","Price","Fees & Com","Amount"
"01/01/2024","Buy","AAPL","APPLE INC","10","$100.00","","-$1,000.00"
"02/01/2024","Sell","AAPL","APPLE INC","10","$120.00","","$1,200.00"
"03/01/2024","Buy","AAPL","APPLE INC","5","$110.00","","-$550.00"
"03/02/2024","Buy","SGUXX","MONEY FUND","100","$1.00","","-$100.00"
`

type stubAssistant struct {
	rows []models.NormalizedTransaction
}

func (s *stubAssistant) Ask(_ context.Context, rows []models.NormalizedTransaction, question string) (string, error) {
	s.rows = rows
	return "answer: " + question, nil
}

func newTestServer(t *testing.T, a assistant.Assistant, rc RouterConfig) (http.Handler, services.LedgerService) {
	t.Helper()
	ledgers := services.NewDefaultLedgerService(config.DefaultPipelineConfig(), cache.New(time.Minute, time.Minute), time.Minute)
	queries := services.NewQueryService(ledgers, a)
	router := NewRouter(NewUploadHandler(ledgers, 1<<20), NewQueryHandler(queries, 1<<20), rc)
	return router, ledgers
}

func multipartBody(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func upload(t *testing.T, h http.Handler, filename, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, filename, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadSuccess(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, nil, RouterConfig{})
	rec := upload(t, h, "history.csv", "text/csv", historyCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success      bool           `json:"success"`
		LedgerID     string         `json:"ledger_id"`
		ProcessedCSV string         `json:"processed_csv"`
		Summary      models.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.LedgerID)
	assert.NotContains(t, resp.ProcessedCSV, "SGUXX")

	lines := strings.Split(strings.TrimSpace(resp.ProcessedCSV), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[1], ",Close"))
	assert.True(t, strings.HasSuffix(lines[2], ",Close"))
	assert.True(t, strings.HasSuffix(lines[3], ",Open"))

	assert.Equal(t, 3, resp.Summary.TotalTrades)
	assert.Equal(t, []string{"AAPL"}, resp.Summary.SymbolsTraded)
	assert.Equal(t, "-$350.00", resp.Summary.TotalAmount)
}

func TestUploadRejectsBadInput(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, nil, RouterConfig{})

	rec := upload(t, h, "history.xlsx", "text/csv", historyCSV)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "CSV")

	rec = upload(t, h, "history.csv", "image/png", historyCSV)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, h, "history.csv", "text/csv", "Date,Action,Amount\n01/02/2024,Buy,-$5\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required columns")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func postQuery(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQueryByLedgerID(t *testing.T) {
	t.Parallel()

	stub := &stubAssistant{}
	h, ledgers := newTestServer(t, stub, RouterConfig{})
	result, err := ledgers.ProcessUpload(context.Background(), []byte(historyCSV))
	require.NoError(t, err)

	rec := postQuery(h, `{"query":"How many trades?","ledger_id":"`+result.LedgerID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "answer: How many trades?", resp["response"])
	assert.Len(t, stub.rows, 3)
}

func TestQueryByProcessedCSV(t *testing.T) {
	t.Parallel()

	stub := &stubAssistant{}
	h, _ := newTestServer(t, stub, RouterConfig{})

	body, err := json.Marshal(map[string]any{
		"query": "P&L?",
		"data":  map[string]string{"processed_csv": "Ticker,Type,Amount\nAAPL,Stock Sell,10.00\n"},
	})
	require.NoError(t, err)

	rec := postQuery(h, string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, stub.rows, 1)
}

func TestQueryErrors(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, &stubAssistant{}, RouterConfig{})
	assert.Equal(t, http.StatusBadRequest, postQuery(h, `{`).Code)
	assert.Equal(t, http.StatusBadRequest, postQuery(h, `{"query":"","ledger_id":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, postQuery(h, `{"query":"hi","ledger_id":"unknown"}`).Code)

	unconfigured, _ := newTestServer(t, nil, RouterConfig{})
	rec := postQuery(unconfigured, `{"query":"hi","data":{"processed_csv":"Ticker,Type\nAAPL,Stock Buy\n"}}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQueryRateLimit(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, &stubAssistant{}, RouterConfig{QueryRatePerMinute: 1, QueryRateBurst: 2})
	body := `{"query":"hi","data":{"processed_csv":"Ticker,Type\nAAPL,Stock Buy\n"}}`

	assert.Equal(t, http.StatusOK, postQuery(h, body).Code)
	assert.Equal(t, http.StatusOK, postQuery(h, body).Code)
	rec := postQuery(h, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit")
}

func TestHealthAndCORS(t *testing.T) {
	t.Parallel()

	h, _ := newTestServer(t, nil, RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")

	req := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
