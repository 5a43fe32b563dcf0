package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/iftarlantern/internal/services"
)

const (
	maxBackupBytes = 1 << 20
	xlsxType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ==================== Pages ====================

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		Title:      services.AppName,
		Categories: h.Planner.Categories(),
	}
	if err := h.templates.Index.Execute(w, data); err != nil {
		respondError(w, InternalError(err))
	}
}

// ==================== State ====================

func (h *Handlers) handleGetInfo(w http.ResponseWriter, r *http.Request) {
	baseURL, _ := h.Settings.GetBaseURL(r.Context())
	respondOK(w, InfoResponse{App: services.AppName, BaseURL: baseURL})
}

func (h *Handlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Planner.State(r.Context()))
}

func (h *Handlers) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Planner.Categories())
}

// ==================== Dishes ====================

func (h *Handlers) handleAddDish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AddDishRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	name, err := h.Planner.AddDish(r.Context(), id, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, DishResponse{
		Category:  id,
		Name:      name,
		Remaining: h.Planner.RemainingBeforeRepeat(r.Context()),
	})
}

func (h *Handlers) handleRemoveDish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := parseIntParam(r, "index")
	if err != nil {
		respondError(w, err)
		return
	}

	name, err := h.Planner.RemoveDish(r.Context(), id, index)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, DishResponse{
		Category:  id,
		Name:      name,
		Remaining: h.Planner.RemainingBeforeRepeat(r.Context()),
	})
}

// ==================== Categories ====================

func (h *Handlers) handleSetServings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ServingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Servings == nil {
		respondError(w, BadRequest("servings is required"))
		return
	}

	servings, err := h.Planner.SetServings(r.Context(), id, *req.Servings)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ServingsResponse{Category: id, Servings: servings})
}

func (h *Handlers) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req EnabledRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Enabled == nil {
		respondError(w, BadRequest("enabled is required"))
		return
	}

	if err := h.Planner.SetEnabled(r.Context(), id, *req.Enabled); err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, EnabledResponse{Category: id, Enabled: *req.Enabled})
}

// ==================== Combos ====================

func (h *Handlers) handleGenerateCombo(w http.ResponseWriter, r *http.Request) {
	result, err := h.Planner.GenerateCombo(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, GenerateResponse{
		Combo:     result.Combo,
		Refilled:  result.Refilled,
		Remaining: result.Remaining,
		At:        result.At,
		Message:   h.Planner.StatusMessage(result),
	})
}

func (h *Handlers) handleComboText(w http.ResponseWriter, r *http.Request) {
	text, err := h.Planner.ComboText(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ComboTextResponse{Text: text})
}

func (h *Handlers) handleComboQR(w http.ResponseWriter, r *http.Request) {
	size := services.DefaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, BadRequest("Invalid size parameter"))
			return
		}
		size = n
	}

	png, err := h.Planner.ComboQR(r.Context(), size)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// ==================== Pools & History ====================

func (h *Handlers) handleResetPools(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.ResetAllPools(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "No-repeat cycle reset.")
}

func (h *Handlers) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.ClearHistory(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "History cleared.")
}

func (h *Handlers) handleHistoryWorkbook(w http.ResponseWriter, r *http.Request) {
	data, err := h.Planner.HistoryWorkbook(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", `attachment; filename="iftar-lantern-history.xlsx"`)
	w.Write(data)
}

// ==================== Backup ====================

func (h *Handlers) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := h.Planner.ExportJSON(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	filename := fmt.Sprintf("iftar-lantern-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

func (h *Handlers) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		respondError(w, BadRequest("Backup is too large or unreadable"))
		return
	}

	if err := h.Planner.ImportDocument(r.Context(), raw); err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, h.Planner.State(r.Context()))
}
