package app

import (
	"math"
	"strings"

	"travel_cms/internal/domain"
)

// trimLines trims each entry and drops the blank ones.
func trimLines(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func trimPoints(in []domain.Point) []domain.Point {
	out := make([]domain.Point, 0, len(in))
	for _, p := range in {
		p.Title = strings.TrimSpace(p.Title)
		p.Description = strings.TrimSpace(p.Description)
		if p.Title == "" && p.Description == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func required(ve *domain.ValidationErrors, field, value, msg string) {
	if value == "" {
		ve.Add(field, msg)
	}
}

func positive(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0 }

func positiveInt(f float64) bool { return positive(f) && f == math.Trunc(f) }

func trimOpt(o domain.Option[string]) domain.Option[string] {
	if v, ok := o.Get(); ok {
		return domain.NonEmpty(strings.TrimSpace(v))
	}
	return o
}
