package voicectx

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/voxsense/voxsense/internal/errcode"
	"github.com/voxsense/voxsense/store"
)

// NoRelevantNotes is the sentinel rendered summary when the candidate
// pool or the scored result is empty.
const NoRelevantNotes = "No relevant voice notes found."

// ScoredNote is one ranked relevance-search hit.
type ScoredNote struct {
	Note  *store.VoiceNote `json:"note"`
	Score float64          `json:"score"`
}

// RelevanceResult holds the ranked hits and a rendered text summary for
// direct consumption by an AI agent.
type RelevanceResult struct {
	Notes   []ScoredNote `json:"notes"`
	Summary string       `json:"summary"`
}

// FindRelevant scores recent transcripts against the query's keywords.
// Each token present anywhere in a transcript scores +1; every
// word-boundary occurrence adds +0.5 on top, so exact-word hits outrank
// partial matches inside longer words. Results are sorted by score
// descending (ties keep fetch order, newest first) and truncated to the
// configured top K.
func (s *Service) FindRelevant(ctx context.Context, query string, ownerID int32) (*RelevanceResult, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return &RelevanceResult{Notes: []ScoredNote{}, Summary: NoRelevantNotes}, nil
	}

	since := s.clock.Now().AddDate(0, 0, -s.config.RelevanceLookbackDays)
	completed := store.NoteStatusCompleted
	candidates, err := s.notes.ListVoiceNotes(ctx, &store.FindVoiceNote{
		OwnerID:      &ownerID,
		Status:       &completed,
		CreatedAfter: &since,
		OnlyWithText: true,
		Limit:        s.config.RelevanceCandidateLimit,
		OrderDesc:    true,
	})
	if err != nil {
		return nil, errcode.Wrap(err, errcode.ErrCodeStoreReadFailed, "failed to list relevance candidates")
	}

	scored := scoreNotes(candidates, tokens)
	if len(scored) > s.config.RelevanceTopK {
		scored = scored[:s.config.RelevanceTopK]
	}
	if len(scored) == 0 {
		return &RelevanceResult{Notes: []ScoredNote{}, Summary: NoRelevantNotes}, nil
	}

	var lines []string
	for _, hit := range scored {
		lines = append(lines, fmt.Sprintf("[%s] %s",
			hit.Note.CreatedAt.In(s.config.Location).Format("2006-01-02"), *hit.Note.Text))
	}

	return &RelevanceResult{Notes: scored, Summary: strings.Join(lines, "\n")}, nil
}

// tokenize lower-cases the query and keeps words longer than two
// characters; shorter words are noise that match everywhere. The length
// check counts runes, so a two-character CJK word is filtered the same
// way a two-letter ASCII word is.
func tokenize(query string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(word) > 2 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func scoreNotes(notes []*store.VoiceNote, tokens []string) []ScoredNote {
	// Word-boundary matchers compiled once per token, not per note.
	matchers := make([]*regexp.Regexp, len(tokens))
	for i, token := range tokens {
		matchers[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(token) + `\b`)
	}

	var scored []ScoredNote
	for _, note := range notes {
		if !note.HasText() {
			continue
		}
		text := strings.ToLower(*note.Text)

		var score float64
		for i, token := range tokens {
			if !strings.Contains(text, token) {
				continue
			}
			score += 1.0
			score += 0.5 * float64(len(matchers[i].FindAllStringIndex(text, -1)))
		}
		if score > 0 {
			scored = append(scored, ScoredNote{Note: note, Score: score})
		}
	}

	// Stable: ties keep the candidate fetch order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
