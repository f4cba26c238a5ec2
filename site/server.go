package site

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Server exposes the generated documents and the current day calendar
// over HTTP so plans can be pulled from other devices on the network.
type Server struct {
	outputFolder string
	calendar     func() string
	log          *logrus.Entry
}

// New builds a server over the output folder. calendar returns the
// serialized ICS for the most recent extraction, or "" when no run has
// completed yet.
func New(outputFolder string, calendar func() string) *Server {
	return &Server{
		outputFolder: outputFolder,
		calendar:     calendar,
		log:          logrus.WithField("component", "site"),
	}
}

// Handler returns the route table; split out from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/plans/", http.StripPrefix("/plans/", http.FileServer(http.Dir(s.outputFolder))))
	mux.HandleFunc("/calendar.ics", s.handleCalendar)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

// Start blocks serving on addr.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("starting status server")
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	body := s.calendar()
	if body == "" {
		http.Error(w, "no extraction has completed yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Write([]byte(body))
}
