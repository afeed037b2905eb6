package prescriptions

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"medication-tracker/internal/domain/medications"
	"medication-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, medsSvc *medications.Service) {
	r.Route("/prescriptions", func(pr chi.Router) {
		pr.Post("/", createPrescriptionHandler(svc, medsSvc))
		pr.Get("/", listPrescriptionsHandler(svc))

		pr.Get("/{prescriptionID}", getPrescriptionHandler(svc))
		pr.Put("/{prescriptionID}", updatePrescriptionHandler(svc))
		pr.Delete("/{prescriptionID}", deletePrescriptionHandler(svc, medsSvc))
		pr.Post("/{prescriptionID}/refill", refillHandler(svc))
	})
}

type createPrescriptionRequest struct {
	Name             string `json:"name"`
	Prescriber       string `json:"prescriber"`
	Pharmacy         string `json:"pharmacy"`
	PrescribedDate   string `json:"prescribed_date"` // YYYY-MM-DD opcional
	Refills          int    `json:"refills"`
	RefillsRemaining *int   `json:"refills_remaining"`
	Notes            string `json:"notes"`

	// Opcional: medicamentos a crear junto con la receta.
	Medications []prescriptionMedicationRequest `json:"medications"`
}

type prescriptionMedicationRequest struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions"`
	StartDate    string `json:"start_date"` // YYYY-MM-DD
	EndDate      string `json:"end_date"`   // YYYY-MM-DD opcional
}

type prescriptionResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Name             string     `json:"name"`
	Prescriber       string     `json:"prescriber"`
	Pharmacy         string     `json:"pharmacy"`
	PrescribedDate   time.Time  `json:"prescribed_date"`
	Refills          int        `json:"refills"`
	RefillsRemaining int        `json:"refills_remaining"`
	NextRefillDate   *time.Time `json:"next_refill_date,omitempty"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type refillResponse struct {
	Message      string               `json:"message"`
	Prescription prescriptionResponse `json:"prescription"`
}

// createPrescriptionHandler godoc
// @Summary Registrar receta
// @Description Crea una receta; opcionalmente crea también sus medicamentos asociados. refills_remaining arranca igual a refills si no se envía.
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param payload body createPrescriptionRequest true "Datos de la receta"
// @Success 201 {object} prescriptionResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /prescriptions [post]
func createPrescriptionHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var prescribed time.Time
		if strings.TrimSpace(req.PrescribedDate) != "" {
			t, err := time.Parse("2006-01-02", strings.TrimSpace(req.PrescribedDate))
			if err != nil {
				http.Error(w, "prescribed_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			prescribed = t
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:             req.Name,
			Prescriber:       req.Prescriber,
			Pharmacy:         req.Pharmacy,
			PrescribedDate:   prescribed,
			Refills:          req.Refills,
			RefillsRemaining: req.RefillsRemaining,
			Notes:            req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		// Medicamentos asociados: best-effort secuencial, sin transacción
		// cross-repo (los repos en memoria no la tienen; en Postgres la
		// unidad de consistencia real es la receta).
		for _, med := range req.Medications {
			start, err := time.Parse("2006-01-02", strings.TrimSpace(med.StartDate))
			if err != nil {
				http.Error(w, "medication start_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			var end *time.Time
			if strings.TrimSpace(med.EndDate) != "" {
				t, err := time.Parse("2006-01-02", strings.TrimSpace(med.EndDate))
				if err != nil {
					http.Error(w, "medication end_date must be YYYY-MM-DD", http.StatusBadRequest)
					return
				}
				end = &t
			}

			if _, err := medsSvc.Create(r.Context(), claims.UserID, medications.CreateInput{
				Name:           med.Name,
				Dosage:         med.Dosage,
				Frequency:      med.Frequency,
				Instructions:   med.Instructions,
				PrescriptionID: p.ID,
				StartDate:      start,
				EndDate:        end,
			}); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		writeJSON(w, http.StatusCreated, toPrescriptionResponse(p))
	}
}

func listPrescriptionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]prescriptionResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPrescriptionResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getPrescriptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetOwned(r.Context(), chi.URLParam(r, "prescriptionID"), claims.UserID)
		if err != nil {
			http.Error(w, "prescription not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toPrescriptionResponse(p))
	}
}

type updatePrescriptionRequest struct {
	Name             *string `json:"name"`
	Prescriber       *string `json:"prescriber"`
	Pharmacy         *string `json:"pharmacy"`
	PrescribedDate   *string `json:"prescribed_date"`  // YYYY-MM-DD
	Refills          *int    `json:"refills"`
	RefillsRemaining *int    `json:"refills_remaining"`
	NextRefillDate   *string `json:"next_refill_date"` // YYYY-MM-DD
	Notes            *string `json:"notes"`
}

// updatePrescriptionHandler godoc
// @Summary Actualizar receta
// @Description Update parcial: solo los campos enviados se modifican.
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param prescriptionID path string true "ID de la receta"
// @Param payload body updatePrescriptionRequest true "Campos a actualizar"
// @Success 200 {object} prescriptionResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "prescription not found"
// @Router /prescriptions/{prescriptionID} [put]
func updatePrescriptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updatePrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Name:             req.Name,
			Prescriber:       req.Prescriber,
			Pharmacy:         req.Pharmacy,
			Refills:          req.Refills,
			RefillsRemaining: req.RefillsRemaining,
			Notes:            req.Notes,
		}
		if req.PrescribedDate != nil {
			t, err := time.Parse("2006-01-02", strings.TrimSpace(*req.PrescribedDate))
			if err != nil {
				http.Error(w, "prescribed_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.PrescribedDate = &t
		}
		if req.NextRefillDate != nil {
			t, err := time.Parse("2006-01-02", strings.TrimSpace(*req.NextRefillDate))
			if err != nil {
				http.Error(w, "next_refill_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.NextRefillDate = &t
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "prescriptionID"), claims.UserID, in)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "prescription not found", http.StatusNotFound)
			case ErrInvalidInput:
				http.Error(w, "invalid input", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPrescriptionResponse(p))
	}
}

// deletePrescriptionHandler godoc
// @Summary Eliminar receta
// @Description Elimina la receta y sus medicamentos asociados.
// @Tags prescriptions
// @Param prescriptionID path string true "ID de la receta"
// @Success 204 {string} string "sin contenido"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "prescription not found"
// @Router /prescriptions/{prescriptionID} [delete]
func deletePrescriptionHandler(svc *Service, medsSvc *medications.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "prescriptionID")
		if _, err := svc.GetOwned(r.Context(), id, claims.UserID); err != nil {
			http.Error(w, "prescription not found", http.StatusNotFound)
			return
		}

		// Los medicamentos asociados caen con la receta. Igual que en el
		// alta: best-effort secuencial, sin transacción cross-repo.
		meds, err := medsSvc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		for _, m := range meds {
			if m.PrescriptionID != id {
				continue
			}
			if err := medsSvc.Delete(r.Context(), m.ID, claims.UserID); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		if err := svc.Delete(r.Context(), id, claims.UserID); err != nil {
			switch err {
			case ErrNotFound, ErrInvalidInput:
				http.Error(w, "prescription not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// refillHandler godoc
// @Summary Procesar refill de una receta
// @Description Descuenta un refill y agenda el próximo a 30 días. Sin refills disponibles responde 400.
// @Tags prescriptions
// @Produce json
// @Param prescriptionID path string true "ID de la receta"
// @Success 200 {object} refillResponse
// @Failure 400 {string} string "no refills remaining"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "prescription not found"
// @Router /prescriptions/{prescriptionID}/refill [post]
func refillHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.Refill(r.Context(), chi.URLParam(r, "prescriptionID"), claims.UserID)
		if err != nil {
			switch err {
			case ErrNoRefills:
				http.Error(w, "no refills remaining for this prescription", http.StatusBadRequest)
			case ErrNotFound, ErrInvalidInput:
				http.Error(w, "prescription not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, refillResponse{
			Message:      "refill processed successfully",
			Prescription: toPrescriptionResponse(p),
		})
	}
}

func toPrescriptionResponse(p Prescription) prescriptionResponse {
	return prescriptionResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		Name:             p.Name,
		Prescriber:       p.Prescriber,
		Pharmacy:         p.Pharmacy,
		PrescribedDate:   p.PrescribedDate,
		Refills:          p.Refills,
		RefillsRemaining: p.RefillsRemaining,
		NextRefillDate:   p.NextRefillDate,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
