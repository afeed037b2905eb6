package adherence

import (
	"math"
	"sort"
	"time"
)

// StatsRecord es la entrada plana del agregador: registro + nombre del
// medicamento ya resuelto por el llamador.
type StatsRecord struct {
	MedicationID   string
	MedicationName string
	ScheduledTime  time.Time
	TakenTime      *time.Time
	Skipped        bool
}

type MedicationStats struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Taken     int    `json:"taken"`
	Adherence int    `json:"adherence"`
}

type TimeOfDayStats struct {
	Time      string `json:"time"`
	Total     int    `json:"total"`
	Taken     int    `json:"taken"`
	Adherence int    `json:"adherence"`
}

type DayCount struct {
	Total int `json:"total"`
	Taken int `json:"taken"`
}

type Streak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// Stats es el resultado derivado del agregador. Se recalcula completo en
// cada llamada; no guarda estado.
type Stats struct {
	Overall      int                 `json:"overall"`
	ByMedication []MedicationStats   `json:"byMedication"`
	ByTime       []TimeOfDayStats    `json:"byTime"`
	Calendar     map[string]DayCount `json:"calendar"`
	Streak       Streak              `json:"streak"`
}

// Franjas horarias fijas, bucketeadas por la hora local del scheduled time:
// Morning [0,12), Afternoon [12,17), Evening [17,20), Bedtime [20,24).
var timeSlots = []string{"Morning", "Afternoon", "Evening", "Bedtime"}

func timeSlotFor(hour int) string {
	switch {
	case hour >= 12 && hour < 17:
		return "Afternoon"
	case hour >= 17 && hour < 20:
		return "Evening"
	case hour >= 20:
		return "Bedtime"
	default:
		return "Morning"
	}
}

// ComputeStats agrega una lista plana de registros en las estadísticas del
// dashboard. Función pura y total: entrada vacía produce el objeto en cero,
// nunca error.
func ComputeStats(records []StatsRecord) Stats {
	stats := Stats{
		ByMedication: []MedicationStats{},
		ByTime:       []TimeOfDayStats{},
		Calendar:     map[string]DayCount{},
	}

	if len(records) == 0 {
		return stats
	}

	resolved := func(r StatsRecord) bool {
		return r.TakenTime != nil || r.Skipped
	}

	// Adherencia global: resueltos (tomados o salteados) / total.
	total := len(records)
	taken := 0
	for _, r := range records {
		if resolved(r) {
			taken++
		}
	}
	stats.Overall = percent(taken, total)

	// Por medicamento, en orden de primera aparición.
	type medAgg struct {
		name  string
		total int
		taken int
	}
	medOrder := make([]string, 0)
	medMap := map[string]*medAgg{}

	for _, r := range records {
		agg, ok := medMap[r.MedicationID]
		if !ok {
			agg = &medAgg{name: r.MedicationName}
			medMap[r.MedicationID] = agg
			medOrder = append(medOrder, r.MedicationID)
		}
		agg.total++
		if resolved(r) {
			agg.taken++
		}
	}

	for _, id := range medOrder {
		agg := medMap[id]
		stats.ByMedication = append(stats.ByMedication, MedicationStats{
			Name:      agg.name,
			Total:     agg.total,
			Taken:     agg.taken,
			Adherence: percent(agg.taken, agg.total),
		})
	}

	// Por franja horaria; franjas sin registros se omiten de la salida.
	type slotAgg struct {
		total int
		taken int
	}
	slotMap := map[string]*slotAgg{}
	for _, slot := range timeSlots {
		slotMap[slot] = &slotAgg{}
	}

	for _, r := range records {
		agg := slotMap[timeSlotFor(r.ScheduledTime.Hour())]
		agg.total++
		if resolved(r) {
			agg.taken++
		}
	}

	for _, slot := range timeSlots {
		agg := slotMap[slot]
		if agg.total == 0 {
			continue
		}
		stats.ByTime = append(stats.ByTime, TimeOfDayStats{
			Time:      slot,
			Total:     agg.total,
			Taken:     agg.taken,
			Adherence: percent(agg.taken, agg.total),
		})
	}

	// Calendario: YYYY-MM-DD -> {total, taken}.
	for _, r := range records {
		key := r.ScheduledTime.Format("2006-01-02")
		day := stats.Calendar[key]
		day.Total++
		if resolved(r) {
			day.Taken++
		}
		stats.Calendar[key] = day
	}

	stats.Streak = computeStreaks(stats.Calendar)

	return stats
}

// computeStreaks calcula rachas de días "perfectos" (taken == total).
// Opera solo sobre fechas presentes en el calendario: un día sin registros
// es invisible, no corta la racha como sí lo hace un día imperfecto.
func computeStreaks(calendar map[string]DayCount) Streak {
	dates := make([]string, 0, len(calendar))
	for d := range calendar {
		dates = append(dates, d)
	}
	// Orden lexicográfico == orden cronológico para YYYY-MM-DD.
	sort.Strings(dates)

	perfect := func(d string) bool {
		day := calendar[d]
		return day.Taken == day.Total
	}

	var st Streak

	// Current: desde el día más reciente hacia atrás hasta el primer
	// día imperfecto. Si el más reciente no es perfecto, current = 0.
	for i := len(dates) - 1; i >= 0; i-- {
		if !perfect(dates[i]) {
			break
		}
		st.Current++
	}

	// Best: una pasada hacia adelante con contador que se resetea.
	run := 0
	for _, d := range dates {
		if perfect(d) {
			run++
			if run > st.Best {
				st.Best = run
			}
		} else {
			run = 0
		}
	}

	return st
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
