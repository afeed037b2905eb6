package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medication-tracker/internal/router"
)

func TestHTTP_EndToEnd_ScheduleAndAdherence(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"

	// 1) Usuario registra un medicamento "twice daily"
	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":       "Aspirin",
		"dosage":     "100mg",
		"frequency":  "twice daily",
		"start_date": "2026-03-01",
	})

	// 2) Agenda del día: dos tomas, 8AM y 8PM, ninguna resuelta
	{
		st, body := doReq(t, ts.URL, "GET", "/medications/schedule?date=2026-03-10", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 schedule, got %d body=%s", st, string(body))
		}

		var slots []struct {
			MedicationID string `json:"medication_id"`
			Label        string `json:"label"`
			Taken        bool   `json:"taken"`
		}
		if err := json.Unmarshal(body, &slots); err != nil {
			t.Fatalf("schedule unmarshal: %v body=%s", err, string(body))
		}
		if len(slots) != 2 {
			t.Fatalf("expected 2 slots, got %d body=%s", len(slots), string(body))
		}
		if slots[0].Label != "8AM" || slots[1].Label != "8PM" {
			t.Fatalf("unexpected slot labels: %s / %s", slots[0].Label, slots[1].Label)
		}
		if slots[0].Taken || slots[1].Taken {
			t.Fatalf("expected no slot taken yet")
		}
	}

	// 3) Usuario registra la toma de las 8AM
	{
		st, body := doReq(t, ts.URL, "POST", "/adherence", userID, map[string]any{
			"medication_id":  medID,
			"scheduled_time": "2026-03-10T08:05:00Z",
			"taken_time":     "2026-03-10T08:07:00Z",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create adherence, got %d body=%s", st, string(body))
		}
	}

	// 4) La agenda cruza el registro con el slot de las 8AM (ventana ±15m)
	{
		st, body := doReq(t, ts.URL, "GET", "/medications/schedule?date=2026-03-10", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 schedule, got %d body=%s", st, string(body))
		}

		var slots []struct {
			Label             string  `json:"label"`
			Taken             bool    `json:"taken"`
			AdherenceRecordID *string `json:"adherence_record_id"`
		}
		if err := json.Unmarshal(body, &slots); err != nil {
			t.Fatalf("schedule unmarshal: %v", err)
		}
		if !slots[0].Taken || slots[0].AdherenceRecordID == nil {
			t.Fatalf("expected 8AM slot matched and taken, got %s", string(body))
		}
		if slots[1].Taken {
			t.Fatalf("expected 8PM slot still pending")
		}
	}

	// 5) Stats: 1 de 1 registros resueltos => overall 100
	{
		st, body := doReq(t, ts.URL, "GET", "/adherence/stats", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 stats, got %d body=%s", st, string(body))
		}

		var stats struct {
			Overall      int `json:"overall"`
			ByMedication []struct {
				Name      string `json:"name"`
				Adherence int    `json:"adherence"`
			} `json:"byMedication"`
			Calendar map[string]struct {
				Total int `json:"total"`
				Taken int `json:"taken"`
			} `json:"calendar"`
		}
		if err := json.Unmarshal(body, &stats); err != nil {
			t.Fatalf("stats unmarshal: %v body=%s", err, string(body))
		}
		if stats.Overall != 100 {
			t.Fatalf("expected overall 100, got %d", stats.Overall)
		}
		if len(stats.ByMedication) != 1 || stats.ByMedication[0].Name != "Aspirin" {
			t.Fatalf("unexpected byMedication: %s", string(body))
		}
		if day, ok := stats.Calendar["2026-03-10"]; !ok || day.Total != 1 || day.Taken != 1 {
			t.Fatalf("unexpected calendar: %s", string(body))
		}
	}

	// 6) Otro usuario no ve nada del primero
	{
		st, body := doReq(t, ts.URL, "GET", "/medications/"+medID, "user-2", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for other user, got %d body=%s", st, string(body))
		}
	}

	// 7) Sin auth => 401
	{
		st, _ := doReq(t, ts.URL, "GET", "/medications", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without auth, got %d", st)
		}
	}
}

func TestHTTP_AdherenceRejectsForeignMedication(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	medID := createMedication(t, ts.URL, "user-1", map[string]any{
		"name":       "Aspirin",
		"dosage":     "100mg",
		"frequency":  "daily",
		"start_date": "2026-03-01",
	})

	// user-2 no puede registrar tomas sobre medicamentos de user-1.
	st, body := doReq(t, ts.URL, "POST", "/adherence", "user-2", map[string]any{
		"medication_id":  medID,
		"scheduled_time": time.Now().UTC().Format(time.RFC3339),
	})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 foreign medication, got %d body=%s", st, string(body))
	}
}

func TestHTTP_PrescriptionRefillFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"

	// Receta con 1 refill
	var prescriptionID string
	{
		st, body := doReq(t, ts.URL, "POST", "/prescriptions", userID, map[string]any{
			"name":    "Amoxicillin",
			"refills": 1,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create prescription, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ID == "" {
			t.Fatalf("create prescription: missing id body=%s", string(body))
		}
		prescriptionID = resp.ID
	}

	// Primer refill: ok, descuenta y agenda el próximo
	{
		st, body := doReq(t, ts.URL, "POST", "/prescriptions/"+prescriptionID+"/refill", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 refill, got %d body=%s", st, string(body))
		}
		var resp struct {
			Prescription struct {
				RefillsRemaining int     `json:"refills_remaining"`
				NextRefillDate   *string `json:"next_refill_date"`
			} `json:"prescription"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Prescription.RefillsRemaining != 0 {
			t.Fatalf("expected 0 refills remaining, got %d", resp.Prescription.RefillsRemaining)
		}
		if resp.Prescription.NextRefillDate == nil {
			t.Fatalf("expected next_refill_date set, body=%s", string(body))
		}
	}

	// Segundo refill: agotado => 400
	{
		st, body := doReq(t, ts.URL, "POST", "/prescriptions/"+prescriptionID+"/refill", userID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 exhausted refill, got %d body=%s", st, string(body))
		}
	}

	// Receta ajena => 404
	{
		st, _ := doReq(t, ts.URL, "POST", "/prescriptions/"+prescriptionID+"/refill", "user-2", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 refill by other user, got %d", st)
		}
	}
}

func TestHTTP_PrescriptionUpdateAndDelete(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"

	// Receta con un medicamento asociado
	var prescriptionID string
	{
		st, body := doReq(t, ts.URL, "POST", "/prescriptions", userID, map[string]any{
			"name":    "Amoxicillin",
			"refills": 2,
			"medications": []map[string]any{
				{
					"name":       "Amoxicillin",
					"dosage":     "500mg",
					"frequency":  "twice daily",
					"start_date": "2026-03-01",
				},
			},
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create prescription, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.ID == "" {
			t.Fatalf("create prescription: missing id body=%s", string(body))
		}
		prescriptionID = resp.ID
	}

	// Update parcial: corrige farmacia y refills_remaining, el resto queda
	{
		st, body := doReq(t, ts.URL, "PUT", "/prescriptions/"+prescriptionID, userID, map[string]any{
			"pharmacy":          "Farmacia Norte",
			"refills_remaining": 1,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 update prescription, got %d body=%s", st, string(body))
		}
		var resp struct {
			Name             string `json:"name"`
			Pharmacy         string `json:"pharmacy"`
			Refills          int    `json:"refills"`
			RefillsRemaining int    `json:"refills_remaining"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Pharmacy != "Farmacia Norte" || resp.RefillsRemaining != 1 {
			t.Fatalf("unexpected prescription after update: %s", string(body))
		}
		if resp.Name != "Amoxicillin" || resp.Refills != 2 {
			t.Fatalf("expected untouched fields preserved, body=%s", string(body))
		}
	}

	// Update/delete ajenos => 404
	{
		st, _ := doReq(t, ts.URL, "PUT", "/prescriptions/"+prescriptionID, "user-2", map[string]any{
			"pharmacy": "Farmacia Sur",
		})
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 update by other user, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/prescriptions/"+prescriptionID, "user-2", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 delete by other user, got %d", st)
		}
	}

	// Delete propio => 204; la receta y su medicamento asociado desaparecen
	{
		st, body := doReq(t, ts.URL, "DELETE", "/prescriptions/"+prescriptionID, userID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete prescription, got %d body=%s", st, string(body))
		}

		st, _ = doReq(t, ts.URL, "GET", "/prescriptions/"+prescriptionID, userID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}

		st, body = doReq(t, ts.URL, "GET", "/medications", userID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list medications, got %d", st)
		}
		var meds []struct {
			PrescriptionID string `json:"prescription_id"`
		}
		_ = json.Unmarshal(body, &meds)
		for _, m := range meds {
			if m.PrescriptionID == prescriptionID {
				t.Fatalf("expected associated medications removed with the prescription, body=%s", string(body))
			}
		}
	}
}

func TestHTTP_MedicationPatchEndDateNull(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	userID := "user-1"
	medID := createMedication(t, ts.URL, userID, map[string]any{
		"name":       "Aspirin",
		"dosage":     "100mg",
		"frequency":  "daily",
		"start_date": "2026-03-01",
		"end_date":   "2026-06-01",
	})

	// end_date: null explícito limpia el campo.
	st, body := doReq(t, ts.URL, "PATCH", "/medications/"+medID, userID, map[string]any{
		"end_date": nil,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
	}

	var resp struct {
		EndDate *string `json:"end_date"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.EndDate != nil {
		t.Fatalf("expected end_date cleared, body=%s", string(body))
	}
}

func TestHTTP_InteractionsWithoutProviderReturn503(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "POST", "/interactions", "user-1", map[string]any{
		"medication_ids": []string{},
	})
	if st != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without provider, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/medications/info?name=aspirin", "user-1", nil)
	if st != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without provider, got %d", st)
	}
}

func createMedication(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/medications", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create medication, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create medication: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
