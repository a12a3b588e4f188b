// Package router classifies a free-text patient question into an intent and
// resolves the record(s) it refers to. Rules are evaluated in a fixed order and
// the first rule that matches wins.
package router

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/oncoaide/internal/records"
)

// Intent is the classified purpose of a query
type Intent string

const (
	IntentListAll     Intent = "list_all"
	IntentByID        Intent = "fetch_by_id"
	IntentByCondition Intent = "fetch_by_condition"
	IntentByName      Intent = "fetch_by_name"
	IntentNone        Intent = "none"
)

// UnknownName is the display name used when a resolved record carries no name
const UnknownName = "Unknown"

// ListAllPhrases trigger the list-all intent when contained in the query
var ListAllPhrases = []string{
	"list of all patient",
	"name all the patient",
	"give all the patient",
	"all patients",
}

const byIDPhrase = "get details of patient with id"

var conditionPattern = regexp.MustCompile(`who has ([\p{L}\p{N}_]+ cancer)`)

// Result is the outcome of routing one query
type Result struct {
	Intent Intent
	// Records holds every stored record for IntentListAll
	Records []records.Record
	// Record is the resolved subject, nil when nothing matched
	Record records.Record
	// SubjectName is the display name of Record
	SubjectName string
	// PatientID is the id extracted for IntentByID
	PatientID string
	// Condition is the phrase captured for IntentByCondition
	Condition string
	// MatchedToken is the cleaned query token that resolved IntentByName
	MatchedToken string
}

// Router resolves queries against a record store
type Router struct {
	store records.Store
}

// New creates a router over store
func New(store records.Store) *Router {
	return &Router{store: store}
}

// Route classifies query, which the caller has already lowercased.
func (rt *Router) Route(ctx context.Context, query string) (*Result, error) {
	if containsAny(query, ListAllPhrases) {
		all, err := rt.store.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{Intent: IntentListAll, Records: all}, nil
	}

	if strings.Contains(query, byIDPhrase) {
		id := ExtractID(query)
		res := &Result{Intent: IntentByID, PatientID: id}
		rec, err := rt.store.FindByID(ctx, id)
		if err != nil && !errors.Is(err, records.ErrNotFound) {
			return nil, err
		}
		if rec != nil {
			res.Record = rec
			res.SubjectName = rec.DisplayName(UnknownName)
		}
		log.Debug().Str("patient_id", id).Bool("found", rec != nil).Msg("Routed query by patient id")
		return res, nil
	}

	if strings.Contains(query, "who has") && strings.Contains(query, "cancer") {
		if m := conditionPattern.FindStringSubmatch(query); m != nil {
			res := &Result{Intent: IntentByCondition, Condition: m[1]}
			rec, err := rt.store.FindByCondition(ctx, m[1])
			if err != nil && !errors.Is(err, records.ErrNotFound) {
				return nil, err
			}
			if rec != nil {
				res.Record = rec
				res.SubjectName = rec.DisplayName(UnknownName)
			}
			return res, nil
		}
	}

	return rt.routeByName(ctx, query)
}

// routeByName tries each whitespace token as a name pattern and stops at the
// first token that matches any record. There is no stop-word filtering, so
// short common words can match.
func (rt *Router) routeByName(ctx context.Context, query string) (*Result, error) {
	for _, token := range strings.Fields(query) {
		cleaned := StripPossessive(token)
		rec, err := rt.store.FindByName(ctx, cleaned)
		switch {
		case errors.Is(err, records.ErrNotFound):
			continue
		case errors.Is(err, records.ErrInvalidPattern):
			log.Warn().Str("token", cleaned).Msg("Skipping query token that is not a valid pattern")
			continue
		case err != nil:
			return nil, err
		}

		name := rec.DisplayName(UnknownName)
		log.Info().Str("token", cleaned).Str("patient", name).Msg("Matched patient")
		return &Result{
			Intent:       IntentByName,
			Record:       rec,
			SubjectName:  name,
			MatchedToken: cleaned,
		}, nil
	}

	return &Result{Intent: IntentNone}, nil
}

// ExtractID returns the trimmed text after the last occurrence of "id".
// Any "id" later in the query (for example inside the id itself) moves the
// split point.
func ExtractID(query string) string {
	idx := strings.LastIndex(query, "id")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(query[idx+len("id"):])
}

// StripPossessive removes one trailing "'s"
func StripPossessive(token string) string {
	return strings.TrimSuffix(token, "'s")
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
