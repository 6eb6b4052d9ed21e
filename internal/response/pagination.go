package response

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tasklist/tasklist-api/internal/query"
)

const onEachSide = 3

// Pagination is a length-aware page descriptor.
type Pagination struct {
	CurrentPage  int     `json:"current_page"`
	Data         any     `json:"data"`
	FirstPageURL string  `json:"first_page_url"`
	From         *int    `json:"from"`
	LastPage     int     `json:"last_page"`
	LastPageURL  string  `json:"last_page_url"`
	Links        []Link  `json:"links"`
	NextPageURL  *string `json:"next_page_url"`
	Path         string  `json:"path"`
	PerPage      int     `json:"per_page"`
	PrevPageURL  *string `json:"prev_page_url"`
	To           *int    `json:"to"`
	Total        int     `json:"total"`
}

// Link is one entry of the page navigation. URL is nil for separators and
// for prev/next when there is no such page.
type Link struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

// NewPagination describes p for a request to r. baseURL overrides the
// request's scheme and host when set. Other query parameters are kept in
// every page URL.
func NewPagination[T any](r *http.Request, baseURL string, p query.Page[T]) Pagination {
	u := pageURLs{path: requestPath(r, baseURL), query: r.URL.Query()}
	last := p.LastPage()

	out := Pagination{
		CurrentPage:  p.CurrentPage,
		Data:         p.Items,
		FirstPageURL: u.page(1),
		LastPage:     last,
		LastPageURL:  u.page(last),
		Path:         u.path,
		PerPage:      p.PerPage,
		Total:        p.Total,
	}
	if from := p.From(); from > 0 {
		to := p.To()
		out.From, out.To = &from, &to
	}
	if p.CurrentPage > 1 {
		prev := u.page(min(p.CurrentPage-1, last))
		out.PrevPageURL = &prev
	}
	if p.CurrentPage < last {
		next := u.page(p.CurrentPage + 1)
		out.NextPageURL = &next
	}

	out.Links = append(out.Links, Link{URL: out.PrevPageURL, Label: "&laquo; Previous"})
	for _, n := range window(p.CurrentPage, last) {
		if n == 0 {
			out.Links = append(out.Links, Link{Label: "..."})
			continue
		}
		link := u.page(n)
		out.Links = append(out.Links, Link{URL: &link, Label: strconv.Itoa(n), Active: n == p.CurrentPage})
	}
	out.Links = append(out.Links, Link{URL: out.NextPageURL, Label: "Next &raquo;"})

	return out
}

type pageURLs struct {
	path  string
	query url.Values
}

func (u pageURLs) page(n int) string {
	q := url.Values{}
	for k, v := range u.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return u.path + "?" + q.Encode()
}

func requestPath(r *http.Request, baseURL string) string {
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/") + r.URL.Path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	switch fwd := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); fwd {
	case "http", "https":
		scheme = fwd
	}
	return scheme + "://" + r.Host + r.URL.Path
}

// window lists the page numbers to link, with 0 marking a "..." gap.
// Short ranges are listed in full; long ones keep both ends and a slider
// around the current page.
func window(current, last int) []int {
	span := onEachSide * 2
	if last < span+6 {
		return pageRange(1, last)
	}

	var pages []int
	switch {
	case current <= span:
		pages = append(pageRange(1, span+onEachSide), 0)
		pages = append(pages, last-1, last)
	case current > last-span:
		pages = []int{1, 2, 0}
		pages = append(pages, pageRange(last-(span+onEachSide-1), last)...)
	default:
		pages = []int{1, 2, 0}
		pages = append(pages, pageRange(current-onEachSide, current+onEachSide)...)
		pages = append(pages, 0, last-1, last)
	}
	return pages
}

func pageRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
