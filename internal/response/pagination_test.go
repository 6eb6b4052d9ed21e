package response

import (
	"net/http/httptest"
	"net/url"
	"slices"
	"testing"

	"github.com/tasklist/tasklist-api/internal/query"
)

func labels(links []Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Label
	}
	return out
}

func TestNewPagination(t *testing.T) {
	req := httptest.NewRequest("GET", "http://api.test/task?page=2&size=2&status=opened", nil)
	p := query.Page[string]{Items: []string{"c", "d"}, Total: 5, CurrentPage: 2, PerPage: 2}

	got := NewPagination(req, "", p)

	if got.Path != "http://api.test/task" {
		t.Errorf("path = %q", got.Path)
	}
	if got.LastPage != 3 || got.Total != 5 || got.PerPage != 2 {
		t.Errorf("got last=%d total=%d per=%d", got.LastPage, got.Total, got.PerPage)
	}
	if got.From == nil || *got.From != 3 || got.To == nil || *got.To != 4 {
		t.Errorf("from/to = %v/%v", got.From, got.To)
	}
	if got.FirstPageURL != "http://api.test/task?page=1&size=2&status=opened" {
		t.Errorf("first = %q", got.FirstPageURL)
	}
	if got.PrevPageURL == nil || *got.PrevPageURL != "http://api.test/task?page=1&size=2&status=opened" {
		t.Errorf("prev = %v", got.PrevPageURL)
	}
	if got.NextPageURL == nil || *got.NextPageURL != "http://api.test/task?page=3&size=2&status=opened" {
		t.Errorf("next = %v", got.NextPageURL)
	}

	want := []string{"&laquo; Previous", "1", "2", "3", "Next &raquo;"}
	if l := labels(got.Links); !slices.Equal(l, want) {
		t.Errorf("links = %v, want %v", l, want)
	}
	if !got.Links[2].Active || got.Links[1].Active {
		t.Error("only the current page should be active")
	}
}

func TestNewPagination_BaseURL(t *testing.T) {
	req := httptest.NewRequest("GET", "/task-list", nil)
	p := query.Page[string]{Items: []string{}, Total: 0, CurrentPage: 1, PerPage: 10}

	got := NewPagination(req, "https://tasks.example.com/", p)

	if got.Path != "https://tasks.example.com/task-list" {
		t.Errorf("path = %q", got.Path)
	}
	if got.LastPage != 1 {
		t.Errorf("last page = %d, want 1", got.LastPage)
	}
	if got.From != nil || got.To != nil {
		t.Error("from/to should be null on an empty page")
	}
	if got.PrevPageURL != nil || got.NextPageURL != nil {
		t.Error("prev/next should be null on a single page")
	}
}

func TestNewPagination_PastLastPage(t *testing.T) {
	req := httptest.NewRequest("GET", "/task?page=9", nil)
	p := query.Page[string]{Items: []string{}, Total: 3, CurrentPage: 9, PerPage: 10}

	got := NewPagination(req, "", p)

	if got.NextPageURL != nil {
		t.Errorf("next = %v, want nil", *got.NextPageURL)
	}
	if got.PrevPageURL == nil {
		t.Fatal("prev should point back inside the range")
	}
	u, _ := url.Parse(*got.PrevPageURL)
	if u.Query().Get("page") != "1" {
		t.Errorf("prev page = %q, want 1", u.Query().Get("page"))
	}
}

func TestNewPagination_ForwardedProto(t *testing.T) {
	p := query.Page[string]{Items: []string{}, CurrentPage: 1, PerPage: 10}

	tests := []struct {
		header string
		want   string
	}{
		{"https", "https://api.test/task"},
		{"HTTPS", "https://api.test/task"},
		{"javascript", "http://api.test/task"},
		{"https://evil.test/x?", "http://api.test/task"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "http://api.test/task", nil)
		req.Header.Set("X-Forwarded-Proto", tt.header)
		if got := NewPagination(req, "", p).Path; got != tt.want {
			t.Errorf("X-Forwarded-Proto %q: path = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		current, last int
		want          []int
	}{
		{1, 1, []int{1}},
		{3, 5, []int{1, 2, 3, 4, 5}},
		{2, 20, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 19, 20}},
		{10, 20, []int{1, 2, 0, 7, 8, 9, 10, 11, 12, 13, 0, 19, 20}},
		{18, 20, []int{1, 2, 0, 12, 13, 14, 15, 16, 17, 18, 19, 20}},
	}
	for _, tt := range tests {
		if got := window(tt.current, tt.last); !slices.Equal(got, tt.want) {
			t.Errorf("window(%d, %d) = %v, want %v", tt.current, tt.last, got, tt.want)
		}
	}
}
