package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nextlevelbuilder/kitedash/internal/kite"
	"github.com/nextlevelbuilder/kitedash/pkg/protocol"
)

// queryInstruments collects ?i= values; each may hold a comma-separated list.
func queryInstruments(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var out []string
	for _, v := range r.URL.Query()["i"] {
		for _, inst := range strings.Split(v, ",") {
			inst = strings.TrimSpace(inst)
			if inst == "" {
				continue
			}
			if !isValidInstrument(inst) {
				writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "invalid instrument: "+inst)
				return nil, false
			}
			out = append(out, inst)
		}
	}
	if len(out) == 0 {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "at least one instrument (i=EXCHANGE:SYMBOL) is required")
		return nil, false
	}
	return out, true
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if instruments, ok := queryInstruments(w, r); ok {
		writeResult(w, session(r).Broker().GetQuotes(r.Context(), instruments))
	}
}

func (s *Server) handleLTP(w http.ResponseWriter, r *http.Request) {
	if instruments, ok := queryInstruments(w, r); ok {
		writeResult(w, session(r).Broker().GetLTP(r.Context(), instruments))
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "q is required")
		return
	}
	filterOn := r.URL.Query().Get("filter_on")
	if filterOn == "" {
		filterOn = kite.DefaultFilterOn
	}
	writeResult(w, session(r).Broker().SearchInstruments(r.Context(), q, filterOn))
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token, err := strconv.Atoi(q.Get("token"))
	if err != nil || token <= 0 {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "token must be a positive instrument token")
		return
	}
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "from and to are required")
		return
	}
	interval := q.Get("interval")
	if interval == "" {
		interval = kite.DefaultInterval
	}
	writeResult(w, session(r).Broker().GetHistoricalData(r.Context(), token, from, to, interval))
}
