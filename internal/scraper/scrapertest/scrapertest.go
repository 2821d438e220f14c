// Package scrapertest provides a fake venue calendar endpoint for tests.
package scrapertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pfrederiksen/saturday-alert/internal/season"
)

// CountFunc returns the number of booked events for a day
type CountFunc func(date time.Time) int

// Request records what the fake endpoint received
type Request struct {
	Method        string
	Month         season.MonthKey
	Action        string
	ID            string
	UserAgent     string
	RequestedWith string
	ContentType   string
}

// Server is a fake admin-ajax endpoint serving generated calendar grids
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	counts   CountFunc
	failures map[season.MonthKey]int
	requests []Request
}

// NewServer starts a fake endpoint. A nil counts books nothing.
func NewServer(counts CountFunc) *Server {
	if counts == nil {
		counts = func(time.Time) int { return 0 }
	}
	s := &Server{
		counts:   counts,
		failures: make(map[season.MonthKey]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// FailMonth makes requests for key answer with the given status code
func (s *Server) FailMonth(key season.MonthKey, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = status
}

// Requests returns the requests received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	year, _ := strconv.Atoi(r.PostForm.Get("year"))
	month, _ := strconv.Atoi(r.PostForm.Get("month"))
	key := season.MonthKey{Year: year, Month: time.Month(month)}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Month:         key,
		Action:        r.PostForm.Get("action"),
		ID:            r.PostForm.Get("id"),
		UserAgent:     r.Header.Get("User-Agent"),
		RequestedWith: r.Header.Get("X-Requested-With"),
		ContentType:   r.Header.Get("Content-Type"),
	})
	status, failing := s.failures[key]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"success":false,"data":"calendar unavailable"}`)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"success": true,
		"data":    GridHTML(key, s.counts),
	})
}

// GridHTML renders a month the way the calendar widget does: Sunday-first
// week rows, void cells for days of adjacent months.
func GridHTML(key season.MonthKey, counts CountFunc) string {
	var b strings.Builder

	first := key.FirstDay()
	start := first.AddDate(0, 0, -int(first.Weekday()))

	fmt.Fprintf(&b, "<tbody class=\"simcal-month simcal-month-%d\">\n", int(key.Month))
	for day := start; key.Contains(day) || day.Before(first); {
		b.WriteString("<tr class=\"simcal-week\">\n")
		for i := 0; i < 7; i++ {
			if !key.Contains(day) {
				b.WriteString("<td class=\"simcal-day simcal-day-void \"></td>\n")
			} else {
				fmt.Fprintf(&b,
					"<td class=\"simcal-day-%d simcal-weekday-%d simcal-day\" data-events-count=\"%d\"><div><span class=\"simcal-day-number\">%d</span></div></td>\n",
					day.Day(), int(day.Weekday()), counts(day), day.Day())
			}
			day = day.AddDate(0, 0, 1)
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n")

	return b.String()
}
