package voicectx

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// NoDataAvailable is the sentinel combined context returned when no tier
// has anything to say. Callers compare against it by equality to tell
// "engine ran with nothing" apart from "engine was not invoked".
const NoDataAvailable = "No voice note data available."

// sectionDelimiter separates tier sections in the combined context.
const sectionDelimiter = "\n\n---\n\n"

// CombinedContext is the primary entry point: it fans out the today
// builder and the three period resolvers concurrently, then compiles one
// labeled text blob. The four branches are independent; none reads
// another's result, and each degrades to empty rather than failing, so
// the fan-out always joins.
func (s *Service) CombinedContext(ctx context.Context, ownerID int32) *VoiceContext {
	result := &VoiceContext{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Today = s.TodayContext(gctx, ownerID)
		return nil
	})
	g.Go(func() error {
		result.PastTwoDays = s.PastTwoDaysContext(gctx, ownerID)
		return nil
	})
	g.Go(func() error {
		result.PastWeek = s.PastWeekContext(gctx, ownerID)
		return nil
	})
	g.Go(func() error {
		result.PastMonth = s.PastMonthContext(gctx, ownerID)
		return nil
	})
	// Branches never return errors; Wait only synchronizes the join.
	_ = g.Wait()

	result.CombinedContext = compile(result)
	return result
}

// compile imposes the fixed section order independent of completion
// order: today, two days, week, month. A tier is included only when it
// has data; weekly and monthly headers carry their topic set.
func compile(vc *VoiceContext) string {
	var sections []string

	if vc.Today != nil && vc.Today.TotalNotes > 0 {
		sections = append(sections, "## Today's Voice Notes\n\n"+vc.Today.FullText)
	}
	if vc.PastTwoDays != nil && vc.PastTwoDays.Available {
		sections = append(sections, "## Past 2 Days\n\n"+vc.PastTwoDays.Summary)
	}
	if section := periodSection("## Past Week", vc.PastWeek); section != "" {
		sections = append(sections, section)
	}
	if section := periodSection("## Past Month", vc.PastMonth); section != "" {
		sections = append(sections, section)
	}

	if len(sections) == 0 {
		return NoDataAvailable
	}
	return strings.Join(sections, sectionDelimiter)
}

func periodSection(header string, pc *PeriodContext) string {
	if pc == nil || !pc.Available {
		return ""
	}
	if len(pc.KeyTopics) > 0 {
		header = fmt.Sprintf("%s (topics: %s)", header, strings.Join(pc.KeyTopics, ", "))
	}
	return header + "\n\n" + pc.Summary
}
