// Package search turns tutor search query parameters into a typed filter
// with an explicit allow-list. The same Query renders a SQL predicate and
// matches in-memory profiles.
package search

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/tutorbook/libs/apperr"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/tutorbook/services/booking-service/internal/timeslot"
)

type Query struct {
	Subject   string
	MinRate   *float64
	MaxRate   *float64
	MinRating *float64
	Day       string
	Time      string
}

type parser func(q *Query, raw string) error

var allowed = map[string]parser{
	"subject": func(q *Query, raw string) error {
		q.Subject = strings.TrimSpace(raw)
		return nil
	},
	"minRate": func(q *Query, raw string) error {
		v, err := nonNegative("minRate", raw)
		q.MinRate = v
		return err
	},
	"maxRate": func(q *Query, raw string) error {
		v, err := nonNegative("maxRate", raw)
		q.MaxRate = v
		return err
	},
	"minRating": func(q *Query, raw string) error {
		v, err := nonNegative("minRating", raw)
		if err == nil && *v > 5 {
			return apperr.Validation("minRating must be between 0 and 5")
		}
		q.MinRating = v
		return err
	},
	"day": func(q *Query, raw string) error {
		raw = strings.TrimSpace(raw)
		if !timeslot.IsWeekday(raw) {
			return apperr.Validation("day must be a weekday name")
		}
		q.Day = strings.ToLower(raw)
		return nil
	},
	"time": func(q *Query, raw string) error {
		raw = strings.TrimSpace(raw)
		if _, err := timeslot.ToMinutes(raw); err != nil {
			return apperr.Validation("time must be a time in HH:MM format")
		}
		q.Time = raw
		return nil
	},
}

// Parse validates every parameter against the allow-list. Empty values
// are ignored.
func Parse(values url.Values) (Query, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var q Query
	for _, key := range keys {
		parse, ok := allowed[key]
		if !ok {
			return Query{}, apperr.Validation("Unknown filter: " + key)
		}
		raw := values.Get(key)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if err := parse(&q, raw); err != nil {
			return Query{}, err
		}
	}
	if q.MinRate != nil && q.MaxRate != nil && *q.MinRate > *q.MaxRate {
		return Query{}, apperr.Validation("minRate must not exceed maxRate")
	}
	return q, nil
}

func nonNegative(field, raw string) (*float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return nil, apperr.Validation(field + " must be a non-negative number")
	}
	return &v, nil
}

// Where renders the predicate for tutor_profiles aliased as t, numbering
// placeholders from 1. Only approved profiles are ever returned.
func (q Query) Where() (string, []any) {
	conds := []string{"t.status = 'approved'"}
	var args []any
	argIdx := 1

	if q.Subject != "" {
		conds = append(conds, fmt.Sprintf(`EXISTS (SELECT 1 FROM unnest(t.subjects) s WHERE s ILIKE $%d ESCAPE '\')`, argIdx))
		args = append(args, "%"+escapeLike(q.Subject)+"%")
		argIdx++
	}
	if q.MinRate != nil {
		conds = append(conds, fmt.Sprintf("t.hourly_rate >= $%d", argIdx))
		args = append(args, *q.MinRate)
		argIdx++
	}
	if q.MaxRate != nil {
		conds = append(conds, fmt.Sprintf("t.hourly_rate <= $%d", argIdx))
		args = append(args, *q.MaxRate)
		argIdx++
	}
	if q.MinRating != nil {
		conds = append(conds, fmt.Sprintf("t.rating >= $%d", argIdx))
		args = append(args, *q.MinRating)
		argIdx++
	}
	if q.Day != "" || q.Time != "" {
		var window []string
		if q.Day != "" {
			window = append(window, fmt.Sprintf(`$%d = ANY(string_to_array(lower(regexp_replace(w->>'day', '\s', '', 'g')), ','))`, argIdx))
			args = append(args, q.Day)
			argIdx++
		}
		if q.Time != "" {
			window = append(window, fmt.Sprintf(`w->>'from' <= $%d AND w->>'to' >= $%d`, argIdx, argIdx))
			args = append(args, q.Time)
			argIdx++
		}
		conds = append(conds, "EXISTS (SELECT 1 FROM jsonb_array_elements(t.availability) w WHERE "+strings.Join(window, " AND ")+")")
	}
	return strings.Join(conds, " AND "), args
}

// Matches applies the same predicate to a profile already in memory.
func (q Query) Matches(t model.Tutor) bool {
	if t.Status != model.TutorApproved {
		return false
	}
	if q.Subject != "" && !anySubject(t.Subjects, strings.ToLower(q.Subject)) {
		return false
	}
	if q.MinRate != nil && t.HourlyRate < *q.MinRate {
		return false
	}
	if q.MaxRate != nil && t.HourlyRate > *q.MaxRate {
		return false
	}
	if q.MinRating != nil && t.Rating < *q.MinRating {
		return false
	}
	if q.Day == "" && q.Time == "" {
		return true
	}
	for _, w := range t.Availability {
		if q.Day != "" && !contains(availability.Days(w.Day), q.Day) {
			continue
		}
		if q.Time != "" && (w.From > q.Time || w.To < q.Time) {
			continue
		}
		return true
	}
	return false
}

func anySubject(subjects []string, needle string) bool {
	for _, s := range subjects {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
