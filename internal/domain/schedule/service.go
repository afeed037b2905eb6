package schedule

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"medication-tracker/internal/domain/adherence"
	"medication-tracker/internal/domain/medications"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// matchWindow: un registro de adherencia se considera de un slot si su
// scheduled_time está a menos de 15 minutos (diferencia absoluta).
// Es un heurístico, no un join garantizado: ante dos registros dentro de
// la ventana gana el primero en orden de listado.
const matchWindow = 15 * time.Minute

// Slot es una toma esperada de la agenda del día, ya cruzada con el
// registro de adherencia si existe. Derivado, nunca persistido.
type Slot struct {
	MedicationID   string
	MedicationName string
	Dosage         string
	Instructions   string

	Time  time.Time
	Label string

	AdherenceRecordID string // "" si no hay registro
	Taken             bool
	Skipped           bool
}

// Service arma la agenda diaria componiendo medications + adherence.
// No tiene repo propio: todo lo que produce es derivado.
type Service struct {
	meds      *medications.Service
	adherence *adherence.Service
}

func NewService(meds *medications.Service, adh *adherence.Service) *Service {
	return &Service{
		meds:      meds,
		adherence: adh,
	}
}

// DaySchedule genera la agenda de un usuario para un día: dosis esperadas
// de cada medicamento activo, cruzadas con los registros de adherencia del
// día, aplanadas y ordenadas por hora ascendente (orden estable).
func (s *Service) DaySchedule(ctx context.Context, userID string, date time.Time) ([]Slot, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	meds, err := s.meds.ListActiveOn(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	records, err := s.adherence.ListByUser(ctx, userID, adherence.ListFilter{
		From: &dayStart,
		To:   &dayEnd,
	})
	if err != nil {
		return nil, err
	}

	// Registros agrupados por medicamento para el cruce.
	byMedication := map[string][]adherence.Record{}
	for _, r := range records {
		byMedication[r.MedicationID] = append(byMedication[r.MedicationID], r)
	}

	slots := make([]Slot, 0)

	for _, m := range meds {
		for _, dose := range GenerateDoses(m.Frequency, m.StartDate, dayStart) {
			slot := Slot{
				MedicationID:   m.ID,
				MedicationName: m.Name,
				Dosage:         m.Dosage,
				Instructions:   m.Instructions,
				Time:           dose.Time,
				Label:          dose.Label,
			}

			if rec, ok := matchRecord(byMedication[m.ID], dose.Time); ok {
				slot.AdherenceRecordID = rec.ID
				slot.Taken = rec.TakenTime != nil
				slot.Skipped = rec.Skipped
			}

			slots = append(slots, slot)
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Time.Before(slots[j].Time)
	})

	return slots, nil
}

// matchRecord busca el primer registro cuya hora programada cae dentro
// de la ventana del slot.
func matchRecord(records []adherence.Record, doseTime time.Time) (adherence.Record, bool) {
	for _, r := range records {
		d := r.ScheduledTime.Sub(doseTime)
		if d < 0 {
			d = -d
		}
		if d < matchWindow {
			return r, true
		}
	}
	return adherence.Record{}, false
}
