package server

import (
	"nyayabot/internal/domain"
)

// askRequest is the body of POST /ask and of each /batch-ask item.
type askRequest struct {
	Query          string `json:"query"`
	Language       string `json:"language"`
	TopK           int    `json:"top_k"`
	IncludeSources *bool  `json:"include_sources"`
}

// toQuery validates the request and maps it onto a pipeline query.
func (r *askRequest) toQuery() (domain.Query, error) {
	lang, err := domain.ParseLanguage(r.Language)
	if err != nil {
		return domain.Query{}, err
	}
	if r.TopK < 0 {
		return domain.Query{}, &domain.ValidationError{Field: "top_k", Reason: "must be at least 1"}
	}
	includeSources := true
	if r.IncludeSources != nil {
		includeSources = *r.IncludeSources
	}
	return domain.Query{
		Text:           r.Query,
		Language:       lang,
		TopK:           r.TopK,
		IncludeSources: includeSources,
	}, nil
}

type sourceDTO struct {
	Text     string  `json:"text"`
	Document string  `json:"document"`
	Score    float32 `json:"score"`
}

type askResponse struct {
	Answer        string      `json:"answer"`
	Language      string      `json:"language"`
	OriginalQuery string      `json:"original_query"`
	EnglishQuery  string      `json:"english_query"`
	Sources       []sourceDTO `json:"sources,omitempty"`
	Degraded      string      `json:"degraded,omitempty"`
	Success       bool        `json:"success"`
	Error         string      `json:"error,omitempty"`
}

func answerToResponse(a *domain.Answer) askResponse {
	resp := askResponse{
		Answer:        a.Text,
		Language:      string(a.Language),
		OriginalQuery: a.OriginalQuery,
		EnglishQuery:  a.EnglishQuery,
		Degraded:      a.Degraded,
		Success:       true,
	}
	for _, s := range a.Sources {
		text := s.Chunk.Text
		if len(text) > 300 {
			text = text[:300] + "..."
		}
		resp.Sources = append(resp.Sources, sourceDTO{
			Text:     text,
			Document: s.Chunk.Document,
			Score:    s.Score,
		})
	}
	return resp
}

type summaryResponse struct {
	Summary  string `json:"summary"`
	Document string `json:"document"`
	Degraded string `json:"degraded,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

type languageDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
