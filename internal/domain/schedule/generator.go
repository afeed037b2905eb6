package schedule

import (
	"fmt"
	"time"
)

// Dose es una toma esperada en un día concreto: hora + etiqueta ("8AM").
// Derivada, nunca persistida.
type Dose struct {
	Time  time.Time
	Label string
}

// GenerateDoses genera las tomas esperadas de un medicamento para un día.
// Función pura de (frequency, startDate, date); el llamador agrega el
// estado de adherencia después.
func GenerateDoses(frequency string, startDate, date time.Time) []Dose {
	return DosesFor(ParseFrequency(frequency), startDate, date)
}

// DosesFor genera las tomas de un día a partir de una regla ya parseada.
// El orden de salida es el orden de generación de la regla; ordenar entre
// medicamentos es responsabilidad del llamador.
func DosesFor(rule Rule, startDate, date time.Time) []Dose {
	// Anclamos a la medianoche local de la fecha consultada.
	base := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	doses := make([]Dose, 0, 4)

	switch rule.Kind {
	case RuleOnceDaily:
		doses = append(doses, doseAt(base, rule.Hour))

	case RuleTwiceDaily:
		doses = append(doses, doseAt(base, 8), doseAt(base, 20))

	case RuleThreeTimesDaily:
		doses = append(doses, doseAt(base, 8), doseAt(base, 14), doseAt(base, 20))

	case RuleFourTimesDaily:
		for _, h := range []int{8, 12, 16, 20} {
			doses = append(doses, doseAt(base, h))
		}

	case RuleEveryHours:
		// Interval 0 cubre dos casos: "every N hours" sin N extraíble
		// (cero dosis, silencioso) y un N=0 literal que colgaría el loop.
		if rule.Interval <= 0 {
			return doses
		}
		for h := 8; h < 24; h += rule.Interval {
			doses = append(doses, doseAt(base, h))
		}

	case RuleWeekly:
		if rule.DayUnknown {
			return doses
		}
		target := startDate.Weekday()
		if rule.HasWeekday {
			target = rule.Weekday
		}
		if date.Weekday() == target {
			doses = append(doses, doseAt(base, 8))
		}

	default:
		// Frecuencia no reconocida: una dosis a las 8AM.
		doses = append(doses, doseAt(base, 8))
	}

	return doses
}

func doseAt(base time.Time, hour int) Dose {
	// time.Date y no base.Add: queremos hora de pared aunque el día
	// tenga cambio de horario.
	return Dose{
		Time:  time.Date(base.Year(), base.Month(), base.Day(), hour, 0, 0, 0, base.Location()),
		Label: hourLabel(hour),
	}
}

// hourLabel formatea "8AM", "2PM", "8PM".
// Nota: la hora 0 rinde "0AM" (no "12AM"); ninguna regla actual genera
// horas antes de las 8, así que solo es alcanzable vía este helper.
func hourLabel(hour int) string {
	display := hour
	if hour > 12 {
		display = hour - 12
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d%s", display, suffix)
}
