package schedule

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"medication-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Ruta estática bajo /medications; chi la resuelve antes que
	// /medications/{medicationID}.
	r.Get("/medications/schedule", dayScheduleHandler(svc))
}

type slotResponse struct {
	MedicationID      string    `json:"medication_id"`
	MedicationName    string    `json:"medication_name"`
	Dosage            string    `json:"dosage"`
	Instructions      string    `json:"instructions"`
	Time              time.Time `json:"time"`
	Label             string    `json:"label"`
	AdherenceRecordID *string   `json:"adherence_record_id"`
	Taken             bool      `json:"taken"`
	Skipped           bool      `json:"skipped"`
}

// dayScheduleHandler godoc
// @Summary Agenda de tomas del día
// @Description Genera la agenda del día a partir de la frecuencia de cada medicamento activo y la cruza con los registros de adherencia (ventana de ±15 minutos). Sin fecha, usa hoy.
// @Tags schedule
// @Produce json
// @Param date query string false "Fecha a consultar (YYYY-MM-DD). Por defecto hoy"
// @Success 200 {array} slotResponse
// @Failure 400 {string} string "date inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /medications/schedule [get]
func dayScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		date := time.Now()
		if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = t
		}

		slots, err := svc.DaySchedule(r.Context(), claims.UserID, date)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]slotResponse, 0, len(slots))
		for _, s := range slots {
			out = append(out, toSlotResponse(s))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toSlotResponse(s Slot) slotResponse {
	resp := slotResponse{
		MedicationID:   s.MedicationID,
		MedicationName: s.MedicationName,
		Dosage:         s.Dosage,
		Instructions:   s.Instructions,
		Time:           s.Time,
		Label:          s.Label,
		Taken:          s.Taken,
		Skipped:        s.Skipped,
	}
	if s.AdherenceRecordID != "" {
		id := s.AdherenceRecordID
		resp.AdherenceRecordID = &id
	}
	return resp
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
