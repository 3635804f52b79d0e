package httpapi

import (
	"net/http"

	"github.com/custodia-labs/castquery/internal/core/domain"
)

// QueryRequest is the body of the ask and plan endpoints.
type QueryRequest struct {
	Query      string   `json:"query" validate:"required,max=4000"`
	TimeCodes  bool     `json:"timeCodes,omitempty"`
	Keywords   []string `json:"keywords,omitempty" validate:"omitempty,max=50,dive,required,max=200"`
	Sort       string   `json:"sort,omitempty" validate:"omitempty,oneof=asc desc"`
	ChannelIDs []int    `json:"channelIds,omitempty" validate:"omitempty,dive,gt=0"`
}

// toDomain converts the body into a pipeline request.
func (q QueryRequest) toDomain() domain.QueryRequest {
	return domain.QueryRequest{
		Query:      q.Query,
		TimeCodes:  q.TimeCodes,
		Keywords:   q.Keywords,
		Sort:       domain.ParseSortDirection(q.Sort),
		ChannelIDs: q.ChannelIDs,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var body QueryRequest
	if err := decodeJSON(r, s.validate, &body); err != nil {
		respondError(w, r, err)
		return
	}

	answer, err := s.query.Ask(r.Context(), body.toDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, answer)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var body QueryRequest
	if err := decodeJSON(r, s.validate, &body); err != nil {
		respondError(w, r, err)
		return
	}

	plan, err := s.query.Plan(r.Context(), body.toDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, plan)
}
