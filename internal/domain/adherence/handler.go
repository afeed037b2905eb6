package adherence

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medication-tracker/internal/domain/medications"
	"medication-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, medsSvc *medications.Service) {
	r.Route("/adherence", func(ar chi.Router) {
		ar.Post("/", createRecordHandler(svc, medsSvc))
		ar.Get("/", listRecordsHandler(svc, medsSvc))

		// Stats va antes que {recordID} solo por legibilidad; chi resuelve
		// rutas estáticas con prioridad de todos modos.
		ar.Get("/stats", statsHandler(svc, medsSvc))

		ar.Get("/{recordID}", getRecordHandler(svc))
		ar.Put("/{recordID}", updateRecordHandler(svc))
	})
}

type createRecordRequest struct {
	MedicationID  string `json:"medication_id"`
	ScheduledTime string `json:"scheduled_time"` // RFC3339
	TakenTime     string `json:"taken_time"`     // RFC3339 opcional
	Skipped       bool   `json:"skipped"`
	Notes         string `json:"notes"`
}

type recordResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	MedicationID   string     `json:"medication_id"`
	MedicationName string     `json:"medication_name,omitempty"`
	ScheduledTime  time.Time  `json:"scheduled_time"`
	TakenTime      *time.Time `json:"taken_time,omitempty"`
	Skipped        bool       `json:"skipped"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type updateRecordRequest struct {
	// Punteros para update parcial: nil = no tocar.
	TakenTime *string `json:"taken_time"` // RFC3339. Para volver a pendiente: null
	Skipped   *bool   `json:"skipped"`
	Notes     *string `json:"notes"`
}

// createRecordHandler godoc
// @Summary Registrar toma de medicamento
// @Description Crea un registro de adherencia. El medicamento debe pertenecer al usuario autenticado.
// @Tags adherence
// @Accept json
// @Produce json
// @Param payload body createRecordRequest true "Registro; tiempos en RFC3339"
// @Success 201 {object} recordResponse
// @Failure 400 {string} string "invalid json / scheduled_time inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /adherence [post]
func createRecordHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scheduled, err := time.Parse(time.RFC3339, req.ScheduledTime)
		if err != nil {
			http.Error(w, "scheduled_time must be RFC3339", http.StatusBadRequest)
			return
		}

		var taken *time.Time
		if strings.TrimSpace(req.TakenTime) != "" {
			t, err := time.Parse(time.RFC3339, req.TakenTime)
			if err != nil {
				http.Error(w, "taken_time must be RFC3339", http.StatusBadRequest)
				return
			}
			taken = &t
		}

		// El medicamento tiene que ser del usuario.
		if _, err := medsSvc.GetOwned(r.Context(), req.MedicationID, claims.UserID); err != nil {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}

		rec, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			MedicationID:  req.MedicationID,
			ScheduledTime: scheduled,
			TakenTime:     taken,
			Skipped:       req.Skipped,
			Notes:         req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec, ""))
	}
}

// listRecordsHandler godoc
// @Summary Listar registros de adherencia
// @Description Lista los registros del usuario, más recientes primero. Filtros opcionales por rango de fechas y medicamento.
// @Tags adherence
// @Produce json
// @Param start_date query string false "scheduled_time mínimo (RFC3339)"
// @Param end_date query string false "scheduled_time máximo (RFC3339)"
// @Param medication_id query string false "Filtrar por medicamento"
// @Success 200 {array} recordResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /adherence [get]
func listRecordsHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		names, err := medicationNames(r, medsSvc, claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec, names[rec.MedicationID]))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rec, err := svc.GetOwned(r.Context(), chi.URLParam(r, "recordID"), claims.UserID)
		if err != nil {
			http.Error(w, "adherence record not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(rec, ""))
	}
}

// updateRecordHandler godoc
// @Summary Actualizar registro de adherencia
// @Description Marca una toma como tomada/salteada o edita notas. Para volver a pendiente enviar `"taken_time": null`.
// @Tags adherence
// @Accept json
// @Produce json
// @Param recordID path string true "ID del registro"
// @Param payload body updateRecordRequest true "Campos a modificar"
// @Success 200 {object} recordResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "adherence record not found"
// @Router /adherence/{recordID} [put]
func updateRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// taken_time: null es significativo; decodificamos a map primero.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updateRecordRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		takenTime := PatchTakenTime{}
		if v, exists := raw["taken_time"]; exists {
			takenTime.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "taken_time must be RFC3339 or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					http.Error(w, "taken_time must be RFC3339 or null", http.StatusBadRequest)
					return
				}
				takenTime.Value = &t
			}
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "recordID"), claims.UserID, UpdateInput{
			TakenTime: takenTime,
			Skipped:   req.Skipped,
			Notes:     req.Notes,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "adherence record not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(updated, ""))
	}
}

// statsHandler godoc
// @Summary Estadísticas de adherencia
// @Description Agrega los registros del usuario en el rango pedido: porcentaje global, por medicamento, por franja horaria, calendario y rachas.
// @Tags adherence
// @Produce json
// @Param start_date query string false "scheduled_time mínimo (RFC3339)"
// @Param end_date query string false "scheduled_time máximo (RFC3339)"
// @Success 200 {object} Stats
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /adherence/stats [get]
func statsHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		names, err := medicationNames(r, medsSvc, claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		input := make([]StatsRecord, 0, len(items))
		for _, rec := range items {
			input = append(input, StatsRecord{
				MedicationID:   rec.MedicationID,
				MedicationName: names[rec.MedicationID],
				ScheduledTime:  rec.ScheduledTime,
				TakenTime:      rec.TakenTime,
				Skipped:        rec.Skipped,
			})
		}

		writeJSON(w, http.StatusOK, ComputeStats(input))
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	filter := ListFilter{}

	if v := strings.TrimSpace(r.URL.Query().Get("start_date")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("start_date must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("end_date")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("end_date must be RFC3339")
		}
		filter.To = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("medication_id")); v != "" {
		filter.MedicationID = v
	}

	return filter, nil
}

// medicationNames arma el lookup id -> nombre para adjuntar a respuestas
// y al input del agregador.
func medicationNames(r *http.Request, medsSvc *medications.Service, userID string) (map[string]string, error) {
	meds, err := medsSvc.ListByUser(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(meds))
	for _, m := range meds {
		names[m.ID] = m.Name
	}
	return names, nil
}

func toRecordResponse(rec Record, medicationName string) recordResponse {
	return recordResponse{
		ID:             rec.ID,
		UserID:         rec.UserID,
		MedicationID:   rec.MedicationID,
		MedicationName: medicationName,
		ScheduledTime:  rec.ScheduledTime,
		TakenTime:      rec.TakenTime,
		Skipped:        rec.Skipped,
		Notes:          rec.Notes,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
