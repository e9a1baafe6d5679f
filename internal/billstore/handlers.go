package billstore

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/zombor/billed/internal/bill"
)

// maxUploadSize bounds receipt uploads
const maxUploadSize = int64(10 << 20)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// handleListBills returns the bills, optionally filtered by owner email
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.service.ListBills(r.URL.Query().Get("email"))
	if err != nil {
		slog.Error("Error listing bills", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if bills == nil {
		bills = []*bill.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

// handleCreateBill stores an uploaded receipt and answers with the draft it allocated
func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file")
		return
	}

	b, err := s.service.CreateDraft(header.Filename, data, r.FormValue("email"))
	if err != nil {
		slog.Error("Error creating bill", "filename", header.Filename, "error", err)
		code := http.StatusInternalServerError
		if errors.Is(err, ErrUnsupportedFile) {
			code = http.StatusBadRequest
		}
		writeError(w, code, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, bill.Created{
		FileURL:  b.FileURL,
		FileName: b.FileName,
		Key:      b.ID,
	})
}

// handleGetBill returns a single bill
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	b, err := s.service.GetBill(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Bill not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleUpdateBill completes or edits a bill
func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var in bill.Bill
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := s.service.UpdateBill(r.PathValue("id"), in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bill not found")
			return
		}
		slog.Error("Error updating bill", "id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleDeleteBill deletes a bill and its receipt
func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteBill(r.PathValue("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bill not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error deleting bill")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetFile serves a stored receipt
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetFile(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
