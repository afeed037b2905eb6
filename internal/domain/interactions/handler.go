package interactions

import (
	"encoding/json"
	"net/http"
	"strings"

	"medication-tracker/internal/domain/medications"
	"medication-tracker/internal/middleware"
	"medication-tracker/internal/ports/medinfo"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registra el chequeo de interacciones y la ficha de
// medicamentos. provider puede ser nil (sin GEMINI_API_KEY): en ese caso
// todo responde 503.
func RegisterRoutes(r chi.Router, provider medinfo.Provider, medsSvc *medications.Service) {
	r.Route("/interactions", func(ir chi.Router) {
		ir.Post("/", checkInteractionsHandler(provider, medsSvc))
		ir.Post("/text", checkTextInteractionsHandler(provider))
	})

	r.Get("/medications/info", medicationInfoHandler(provider))
}

type checkInteractionsRequest struct {
	MedicationIDs []string `json:"medication_ids"`
}

type checkTextRequest struct {
	Text string `json:"text"`
}

type interactionsResponse struct {
	Interactions []medinfo.Interaction `json:"interactions"`
}

// checkInteractionsHandler godoc
// @Summary Chequear interacciones entre medicamentos del usuario
// @Description Analiza interacciones entre los medicamentos indicados por ID. Con menos de dos medicamentos devuelve lista vacía.
// @Tags interactions
// @Accept json
// @Produce json
// @Param payload body checkInteractionsRequest true "IDs de medicamentos"
// @Success 200 {object} interactionsResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Failure 503 {string} string "medication info service not configured"
// @Router /interactions [post]
func checkInteractionsHandler(provider medinfo.Provider, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if provider == nil {
			http.Error(w, "medication info service not configured", http.StatusServiceUnavailable)
			return
		}

		var req checkInteractionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		meds := make([]medinfo.Medication, 0, len(req.MedicationIDs))
		for _, id := range req.MedicationIDs {
			m, err := medsSvc.GetOwned(r.Context(), id, claims.UserID)
			if err != nil {
				http.Error(w, "medication not found", http.StatusNotFound)
				return
			}
			meds = append(meds, medinfo.Medication{
				ID:     m.ID,
				Name:   m.Name,
				Dosage: m.Dosage,
			})
		}

		items, err := provider.CheckInteractions(r.Context(), meds)
		if err != nil {
			http.Error(w, "interaction check failed", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, interactionsResponse{Interactions: items})
	}
}

// checkTextInteractionsHandler godoc
// @Summary Chequear interacciones desde texto libre
// @Description Extrae medicamentos de un texto ("aspirin, warfarin...") y analiza interacciones.
// @Tags interactions
// @Accept json
// @Produce json
// @Param payload body checkTextRequest true "Texto con medicamentos"
// @Success 200 {object} interactionsResponse
// @Failure 400 {string} string "invalid json / text required"
// @Failure 401 {string} string "unauthorized"
// @Failure 503 {string} string "medication info service not configured"
// @Router /interactions/text [post]
func checkTextInteractionsHandler(provider medinfo.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if provider == nil {
			http.Error(w, "medication info service not configured", http.StatusServiceUnavailable)
			return
		}

		var req checkTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			http.Error(w, "text required", http.StatusBadRequest)
			return
		}

		items, err := provider.CheckTextInteractions(r.Context(), req.Text)
		if err != nil {
			http.Error(w, "interaction check failed", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, interactionsResponse{Interactions: items})
	}
}

// medicationInfoHandler godoc
// @Summary Ficha informativa de un medicamento
// @Description Devuelve descripción, usos, efectos adversos y advertencias generadas para el nombre dado.
// @Tags interactions
// @Produce json
// @Param name query string true "Nombre del medicamento"
// @Success 200 {object} medinfo.MedicationInfo
// @Failure 400 {string} string "name required"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "no information available"
// @Failure 503 {string} string "medication info service not configured"
// @Router /medications/info [get]
func medicationInfoHandler(provider medinfo.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if provider == nil {
			http.Error(w, "medication info service not configured", http.StatusServiceUnavailable)
			return
		}

		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}

		info, err := provider.MedicationInfo(r.Context(), name)
		if err != nil {
			if err == medinfo.ErrNoInfo {
				http.Error(w, "no information available for this medication", http.StatusNotFound)
				return
			}
			http.Error(w, "medication info lookup failed", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, info)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
