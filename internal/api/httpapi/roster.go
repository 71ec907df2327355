package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vextm/tm-bridge/internal/domain/field"
)

// errRosterDisabled is reported when no Tournament Manager web server
// address was configured.
var errRosterDisabled = errors.New("roster endpoints are disabled: no tournament manager address configured")

// division parses the {division} path segment.
func division(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("division"))
	if err != nil || n <= 0 {
		return 0, errors.New("division must be a positive integer")
	}

	return n, nil
}

// handleTeams proxies the division's team list.
func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	if s.roster == nil {
		writeError(w, http.StatusNotImplemented, errRosterDisabled)

		return
	}

	n, err := division(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	teams, err := s.roster.Teams(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)

		return
	}

	writeJSON(w, http.StatusOK, teams)
}

// handleMatches proxies the division's match list in the shape of the
// configured competition.
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if s.roster == nil {
		writeError(w, http.StatusNotImplemented, errRosterDisabled)

		return
	}

	n, err := division(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	var payload any

	if s.competition == field.CompetitionVIQRC {
		payload, err = s.roster.MatchesVIQRC(r.Context(), n)
	} else {
		payload, err = s.roster.MatchesV5RC(r.Context(), n)
	}

	if err != nil {
		writeError(w, http.StatusBadGateway, err)

		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// handleRankings proxies the division's rankings in the shape of the
// configured competition.
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	if s.roster == nil {
		writeError(w, http.StatusNotImplemented, errRosterDisabled)

		return
	}

	n, err := division(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	var payload any

	if s.competition == field.CompetitionVIQRC {
		payload, err = s.roster.RankingsVIQRC(r.Context(), n)
	} else {
		payload, err = s.roster.RankingsV5RC(r.Context(), n)
	}

	if err != nil {
		writeError(w, http.StatusBadGateway, err)

		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// handleSkills proxies the event-wide skills rankings.
func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	if s.roster == nil {
		writeError(w, http.StatusNotImplemented, errRosterDisabled)

		return
	}

	rankings, err := s.roster.SkillsRankings(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)

		return
	}

	writeJSON(w, http.StatusOK, rankings)
}
