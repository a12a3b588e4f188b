// Package assistant answers one free-text question: it routes the query,
// answers list/id/condition lookups directly and sends everything else to the
// language model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/oncoaide/internal/metrics"
	"stealthcompany.com/oncoaide/internal/prompt"
	"stealthcompany.com/oncoaide/internal/records"
	"stealthcompany.com/oncoaide/internal/render"
	"stealthcompany.com/oncoaide/internal/router"
)

// ErrUpstream marks failures of the language model provider
var ErrUpstream = errors.New("llm provider error")

// Completer sends a prompt to the language model
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Answer is the reply to one question. Body is a string, except for a
// resolved id lookup where it is the record itself.
type Answer struct {
	Intent router.Intent
	Body   interface{}
}

// Service is the question answering pipeline
type Service struct {
	router   *router.Router
	llm      Completer
	renderer *render.Renderer
}

// New creates a Service
func New(store records.Store, llm Completer, renderer *render.Renderer) *Service {
	return &Service{
		router:   router.New(store),
		llm:      llm,
		renderer: renderer,
	}
}

// Answer handles one question. The model call is detached from ctx
// cancellation: a disconnecting caller does not abort it.
func (s *Service) Answer(ctx context.Context, question string) (*Answer, error) {
	query := strings.ToLower(question)
	log.Info().Str("query", query).Msg("Received query")

	res, err := s.router.Route(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Failed to route query")
		return nil, fmt.Errorf("route query: %w", err)
	}
	metrics.RecordQueryIntent(string(res.Intent), res.Record != nil || len(res.Records) > 0)

	switch res.Intent {
	case router.IntentListAll:
		return &Answer{Intent: res.Intent, Body: ListPatients(res.Records)}, nil
	case router.IntentByID:
		if res.Record == nil {
			return &Answer{Intent: res.Intent, Body: "Patient not found"}, nil
		}
		return &Answer{Intent: res.Intent, Body: res.Record}, nil
	case router.IntentByCondition:
		if res.Record == nil {
			return &Answer{Intent: res.Intent, Body: fmt.Sprintf("No patient with %s found in the database.", res.Condition)}, nil
		}
		return &Answer{Intent: res.Intent, Body: fmt.Sprintf("The patient with %s is %s.", res.Condition, res.SubjectName)}, nil
	}

	var p string
	if res.Record != nil {
		p, err = prompt.ForRecord(res.SubjectName, res.Record, question)
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("patient", res.SubjectName).
			Int("prompt_chars", len(p)).
			Msg("Sending patient record to model")
	} else {
		p = prompt.General(question)
		log.Info().Str("query", query).Msg("Sending general query to model")
	}

	raw, err := s.llm.Complete(context.WithoutCancel(ctx), p)
	if err != nil {
		log.Error().Err(err).Msg("Model call failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	html, err := s.renderer.Render(raw)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render model reply")
		return nil, fmt.Errorf("render reply: %w", err)
	}

	return &Answer{Intent: res.Intent, Body: html}, nil
}

// ListPatients formats every record as "- <name> (<condition>)"
func ListPatients(recs []records.Record) string {
	if len(recs) == 0 {
		return "No patients found in the database."
	}

	lines := make([]string, 0, len(recs)+1)
	lines = append(lines, "Patients in the database:")
	for _, r := range recs {
		lines = append(lines, fmt.Sprintf("- %s (%s)", r.DisplayName(router.UnknownName), r.Condition("No diagnosis")))
	}
	return strings.Join(lines, "\n")
}
