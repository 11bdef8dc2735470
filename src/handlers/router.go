package handlers

import (
	"net/http"
	"time"

	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/utils"
)

// RouterConfig carries the HTTP-layer settings of the server.
type RouterConfig struct {
	AllowedOrigins     []string
	RequestTimeout     time.Duration
	QueryRatePerMinute int
	QueryRateBurst     int
}

// NewRouter registers the API routes and applies the global middleware.
func NewRouter(upload *UploadHandler, query *QueryHandler, rc RouterConfig) http.Handler {
	mux := http.NewServeMux()

	queryLimiter := NewQueryLimiter(rc.QueryRatePerMinute, rc.QueryRateBurst)
	mux.HandleFunc("POST /api/upload", upload.HandleUpload)
	mux.Handle("POST /api/query", RateLimitMiddleware(queryLimiter)(http.HandlerFunc(query.HandleQuery)))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		utils.SendJSON(w, map[string]string{"message": "Trade ledger service is running"}, http.StatusOK)
	})

	logger.L.Info("Routes configured", "allowedOrigins", rc.AllowedOrigins, "queryRatePerMinute", rc.QueryRatePerMinute)
	return CORSMiddleware(rc.AllowedOrigins)(TimeoutMiddleware(rc.RequestTimeout)(mux))
}
