package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RuleKind identifica la variante de frecuencia reconocida.
type RuleKind string

const (
	RuleOnceDaily       RuleKind = "once_daily"
	RuleTwiceDaily      RuleKind = "twice_daily"
	RuleThreeTimesDaily RuleKind = "three_times_daily"
	RuleFourTimesDaily  RuleKind = "four_times_daily"
	RuleEveryHours      RuleKind = "every_hours"
	RuleWeekly          RuleKind = "weekly"
	RuleUnrecognized    RuleKind = "unrecognized"
)

// Rule es el resultado de parsear un texto de frecuencia.
// Separar parseo de generación permite testear cada parte por separado.
type Rule struct {
	Kind RuleKind

	// RuleOnceDaily: hora del día (8 por defecto; 14/18/21 según el texto).
	Hour int

	// RuleEveryHours: intervalo en horas. 0 = no se pudo extraer N
	// ("every ? hours"), lo que genera cero dosis ese día.
	Interval int

	// RuleWeekly: día objetivo cuando el texto trae "on <weekday>".
	// Si HasWeekday es false y DayUnknown es false, el día objetivo
	// es el weekday de la fecha de inicio del medicamento.
	Weekday    time.Weekday
	HasWeekday bool

	// RuleWeekly: "on <palabra>" presente pero no es un día válido.
	// Genera cero dosis siempre.
	DayUnknown bool
}

var everyHoursRe = regexp.MustCompile(`every\s+(\d+)\s+hours`)
var weeklyOnRe = regexp.MustCompile(`on\s+(\w+)`)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseFrequency interpreta un texto libre de frecuencia.
// Primer match gana; las reglas multi-dosis se chequean antes que el
// "daily" genérico para que "twice daily" no caiga en la regla de una dosis.
// Un texto no reconocido NO es error: cae en RuleUnrecognized
// (una dosis a las 8AM).
func ParseFrequency(s string) Rule {
	freq := strings.ToLower(s)

	switch {
	case strings.Contains(freq, "twice daily") || strings.Contains(freq, "bid"):
		return Rule{Kind: RuleTwiceDaily}

	case strings.Contains(freq, "three times daily") || strings.Contains(freq, "tid"):
		return Rule{Kind: RuleThreeTimesDaily}

	case strings.Contains(freq, "four times daily") || strings.Contains(freq, "qid"):
		return Rule{Kind: RuleFourTimesDaily}

	case strings.Contains(freq, "every") && strings.Contains(freq, "hours"):
		r := Rule{Kind: RuleEveryHours}
		if m := everyHoursRe.FindStringSubmatch(freq); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				r.Interval = n
			}
		}
		return r

	case strings.Contains(freq, "weekly"):
		r := Rule{Kind: RuleWeekly}
		if m := weeklyOnRe.FindStringSubmatch(freq); m != nil {
			if wd, ok := weekdayNames[m[1]]; ok {
				r.Weekday = wd
				r.HasWeekday = true
			} else {
				r.DayUnknown = true
			}
		}
		return r

	case strings.Contains(freq, "once daily") || strings.Contains(freq, "daily"):
		hour := 8
		switch {
		case strings.Contains(freq, "morning"):
			hour = 8
		case strings.Contains(freq, "afternoon"):
			hour = 14
		case strings.Contains(freq, "evening"):
			hour = 18
		case strings.Contains(freq, "bedtime") || strings.Contains(freq, "night"):
			hour = 21
		}
		return Rule{Kind: RuleOnceDaily, Hour: hour}
	}

	return Rule{Kind: RuleUnrecognized}
}
