package autofill

import "time"

// EnrichContext agrega al contexto las claves temporales comparables:
// day_of_week (lunes=0 ... domingo=6) y period_of_day (morning/afternoon/
// evening). Las claves ya presentes no se sobreescriben.
func EnrichContext(contexto map[string]string, now time.Time) map[string]string {
	out := make(map[string]string, len(contexto)+2)
	for k, v := range contexto {
		out[k] = v
	}
	if _, ok := out["day_of_week"]; !ok {
		out["day_of_week"] = weekdayLunes0(now)
	}
	if _, ok := out["period_of_day"]; !ok {
		out["period_of_day"] = periodOfDay(now)
	}
	return out
}

// weekdayLunes0 día de la semana con lunes=0 y domingo=6.
func weekdayLunes0(t time.Time) string {
	d := (int(t.Weekday()) + 6) % 7
	return [...]string{"0", "1", "2", "3", "4", "5", "6"}[d]
}

func periodOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "morning"
	case h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}
