package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tasklist/tasklist-api/internal/model"
	"github.com/tasklist/tasklist-api/internal/validate"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// List is a parsed list request.
type List struct {
	Page   int
	Size   int
	Filter Filter
}

// Params names the query parameters a collection accepts. ParentParam is
// the foreign key parameter, e.g. "task_id".
type Params struct {
	ParentParam string
	Fields      Fields
}

// ParseList validates the list query parameters against what the collection supports.
// Unsupported parameters are ignored. Size above MaxSize is clamped.
func ParseList(q url.Values, p Params) (List, error) {
	errs := validate.Errors{}
	var l List

	l.Page = positiveInt(q, "page", DefaultPage, errs)
	l.Size = min(positiveInt(q, "size", DefaultSize, errs), MaxSize)

	l.Filter.Keyword = strings.TrimSpace(q.Get("keyword"))

	if raw := q.Get("status"); raw != "" && p.Fields.Status != "" {
		s, err := model.ParseStatus(raw)
		if err != nil {
			errs.Add("status", "The selected status is invalid.")
		}
		l.Filter.Status = s
	}

	if raw := q.Get("priority"); raw != "" && p.Fields.Priority != "" {
		pr, err := model.ParsePriority(raw)
		if err != nil {
			errs.Add("priority", "The selected priority is invalid.")
		}
		l.Filter.Priority = pr
	}

	if p.Fields.DueDate != "" {
		l.Filter.DueDate = date(q, "due_date", errs)
	}

	l.Filter.StartDate = date(q, "start_date", errs)
	l.Filter.EndDate = date(q, "end_date", errs)
	checkRange(q, l.Filter, errs)

	if p.ParentParam != "" && p.Fields.Parent != "" {
		if raw := q.Get(p.ParentParam); raw != "" {
			if err := uuid.Validate(raw); err != nil {
				errs.Add(p.ParentParam, fmt.Sprintf("The %s field must be a valid UUID.", validate.Label(p.ParentParam)))
			}
			l.Filter.ParentID = raw
		}
	}

	if err := errs.Err(); err != nil {
		return List{}, err
	}
	return l, nil
}

func positiveInt(q url.Values, key string, def int, errs validate.Errors) int {
	raw := q.Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(key, fmt.Sprintf("The %s field must be an integer.", key))
		return def
	}
	if n < 1 {
		errs.Add(key, fmt.Sprintf("The %s field must be at least 1.", key))
		return def
	}
	return n
}

func date(q url.Values, key string, errs validate.Errors) *model.Date {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		errs.Add(key, fmt.Sprintf("The %s field must be a valid date.", validate.Label(key)))
		return nil
	}
	return &d
}

func checkRange(q url.Values, f Filter, errs validate.Errors) {
	hasStart, hasEnd := q.Get("start_date") != "", q.Get("end_date") != ""
	switch {
	case hasStart && !hasEnd:
		errs.Add("end_date", "The end date field is required when start date is present.")
	case hasEnd && !hasStart:
		errs.Add("start_date", "The start date field is required when end date is present.")
	case f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(f.StartDate.Time):
		errs.Add("end_date", "The end date field must be a date after or equal to start date.")
	}
}
