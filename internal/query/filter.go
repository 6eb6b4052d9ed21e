package query

import (
	"time"

	"github.com/tasklist/tasklist-api/internal/model"
)

// Filter holds the optional list parameters of a request. Zero values are absent.
type Filter struct {
	Keyword   string
	Status    model.Status
	Priority  model.Priority
	StartDate *model.Date
	EndDate   *model.Date
	DueDate   *model.Date
	ParentID  string
}

// Fields maps the filter onto a collection's columns. A blank column
// means the collection does not support that filter.
type Fields struct {
	Keyword  []string
	Status   string
	Priority string
	DueDate  string
	Parent   string
	Created  string
}

// Build combines every supplied filter into one conjunctive predicate.
// The keyword terms are OR'd together inside their own bracket.
// The date range covers whole days in loc.
func Build(f Filter, fields Fields, loc *time.Location) Predicate {
	if loc == nil {
		loc = time.UTC
	}

	var terms All

	if f.Keyword != "" && len(fields.Keyword) > 0 {
		kw := make(Any, 0, len(fields.Keyword))
		for _, col := range fields.Keyword {
			kw = append(kw, Contains{Column: col, Value: f.Keyword})
		}
		terms = append(terms, kw)
	}

	if f.Status != "" && fields.Status != "" {
		terms = append(terms, Equals{Column: fields.Status, Value: string(f.Status)})
	}

	if f.Priority != "" && fields.Priority != "" {
		terms = append(terms, Equals{Column: fields.Priority, Value: string(f.Priority)})
	}

	if f.ParentID != "" && fields.Parent != "" {
		terms = append(terms, Equals{Column: fields.Parent, Value: f.ParentID})
	}

	if f.DueDate != nil && fields.DueDate != "" {
		terms = append(terms, Equals{Column: fields.DueDate, Value: f.DueDate.String()})
	}

	if f.StartDate != nil && f.EndDate != nil && fields.Created != "" {
		from, to := DayRange(*f.StartDate, *f.EndDate, loc)
		terms = append(terms, Between{Column: fields.Created, From: from, To: to})
	}

	return terms
}

// DayRange returns the first second of start and the last second of end in loc, as UTC.
func DayRange(start, end model.Date, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	to := time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, loc).Add(-time.Second)
	return from.UTC(), to.UTC()
}
