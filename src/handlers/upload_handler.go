package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/username/tradeledger/src/logger"
	"github.com/username/tradeledger/src/models"
	"github.com/username/tradeledger/src/security/validation"
	"github.com/username/tradeledger/src/services"
	"github.com/username/tradeledger/src/utils"
)

type UploadHandler struct {
	ledgerService services.LedgerService
	maxBytes      int64
}

func NewUploadHandler(service services.LedgerService, maxUploadSizeBytes int64) *UploadHandler {
	return &UploadHandler{
		ledgerService: service,
		maxBytes:      maxUploadSizeBytes,
	}
}

type uploadResponse struct {
	Success bool `json:"success"`
	*models.LedgerResult
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1024*1024)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", h.maxBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "No file provided. Ensure the 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > h.maxBytes {
		logger.L.Warn("Uploaded file too large", "fileSize", fileHeader.Size, "limit", h.maxBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", h.maxBytes/(1024*1024)), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateFileName(fileHeader.Filename); err != nil {
		utils.SendJSONError(w, "Invalid file type. Please upload a CSV file.", http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logger.L.Error("Failed to read uploaded file", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "Failed to read uploaded file.", http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing upload request", "filename", fileHeader.Filename, "clientType", clientContentType, "detectedType", detectedContentType)
	result, err := h.ledgerService.ProcessUpload(r.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParsingFailed):
			logger.L.Warn("Upload failed due to CSV parsing errors", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing CSV file: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrProcessingFailed):
			logger.L.Warn("Upload failed during transaction processing", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error processing transactions in file: %v", err), http.StatusBadRequest)
		default:
			logger.L.Error("Internal error processing upload", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, uploadResponse{Success: true, LedgerResult: result}, http.StatusOK)
}
