package httpapi

import (
	"io"
	"net/http"
	"strings"

	"gks/record-service/internal/models"
	"gks/record-service/internal/provider"
	"gks/record-service/internal/storage"
)

const secretMask = "********"

// maskSettings hides stored credentials; the API never echoes them back.
func maskSettings(st models.Settings) models.Settings {
	mask := func(value string) string {
		if value == "" {
			return ""
		}
		return secretMask
	}
	st.VisionAPIKey = mask(st.VisionAPIKey)
	st.OpenAIAPIKey = mask(st.OpenAIAPIKey)
	st.FTPPassword = mask(st.FTPPassword)
	st.AWSSecretKey = mask(st.AWSSecretKey)
	st.GDriveClientSecret = mask(st.GDriveClientSecret)
	st.OneDriveClientSecret = mask(st.OneDriveClientSecret)
	return st
}

// unmaskUpdate drops echoed masks so a read-modify-write from a client
// never overwrites a stored secret with the mask itself.
func unmaskUpdate(st models.Settings) models.Settings {
	drop := func(value string) string {
		if value == secretMask {
			return ""
		}
		return value
	}
	st.VisionAPIKey = drop(st.VisionAPIKey)
	st.OpenAIAPIKey = drop(st.OpenAIAPIKey)
	st.FTPPassword = drop(st.FTPPassword)
	st.AWSSecretKey = drop(st.AWSSecretKey)
	st.GDriveClientSecret = drop(st.GDriveClientSecret)
	st.OneDriveClientSecret = drop(st.OneDriveClientSecret)
	return st
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := h.store.GetSettings(r.Context())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, maskSettings(settings))
	case http.MethodPut:
		var req models.Settings
		if !decodeRequest(w, r, &req) {
			return
		}
		settings, err := h.store.UpdateSettings(r.Context(), unmaskUpdate(req))
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, maskSettings(settings))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleServicesStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	active := storage.FromSettings(settings, h.uploadDir)
	writeJSON(w, http.StatusOK, map[string]provider.Status{
		"ocr":   provider.OCRStatus(settings),
		"voice": provider.VoiceStatus(settings),
		"storage": {
			Configured: active.Configured(),
			Provider:   storage.ActiveName(settings),
		},
	})
}

func (h *Handler) handleStorageProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"providers": storage.Statuses(settings, h.uploadDir),
		"active":    storage.ActiveName(settings),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleMyStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := requireRole(w, r, models.RoleStaff, models.RoleApprentice)
	if !ok {
		return
	}
	stats, err := h.store.GetMyStats(r.Context(), user.BranchCode)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleDetectPlate(w http.ResponseWriter, r *http.Request) {
	h.handleProviderUpload(w, r, func(settings models.Settings, data []byte, _ string) provider.Result {
		return provider.DetectPlate(settings, data)
	})
}

func (h *Handler) handleDetectText(w http.ResponseWriter, r *http.Request) {
	h.handleProviderUpload(w, r, func(settings models.Settings, data []byte, _ string) provider.Result {
		return provider.DetectText(settings, data)
	})
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	h.handleProviderUpload(w, r, func(settings models.Settings, data []byte, language string) provider.Result {
		return provider.Transcribe(settings, data, language)
	})
}

// handleProviderUpload is the shared shell of the OCR and voice
// endpoints: authenticated multipart in, success-shaped Result out even
// when the backend is unconfigured.
func (h *Handler) handleProviderUpload(w http.ResponseWriter, r *http.Request, run func(models.Settings, []byte, string) provider.Result) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireUser(w, r); !ok {
		return
	}

	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	var data []byte
	language := settings.Language
	if err := r.ParseMultipartForm(32 << 20); err == nil {
		if value := strings.TrimSpace(r.FormValue("language")); value != "" {
			language = value
		}
		if file, _, err := r.FormFile("file"); err == nil {
			defer file.Close()
			data, _ = io.ReadAll(file)
		}
	}

	writeJSON(w, http.StatusOK, run(settings, data, language))
}
