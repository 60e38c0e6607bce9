package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voxsense/voxsense/internal/errcode"
	"github.com/voxsense/voxsense/server/internal/observability"
	"github.com/voxsense/voxsense/store"
)

// UpsertSummaryRequest is the JSON body for POST /api/v1/summaries.
// Period dates use the 2006-01-02 form.
type UpsertSummaryRequest struct {
	OwnerID              int32    `json:"owner_id"`
	PeriodType           string   `json:"period_type"`
	PeriodStart          string   `json:"period_start"`
	PeriodEnd            string   `json:"period_end"`
	Content              string   `json:"content"`
	KeyTopics            []string `json:"key_topics"`
	KeyEntities          []string `json:"key_entities"`
	Sentiment            string   `json:"sentiment"`
	SourceNoteIDs        []string `json:"source_note_ids"`
	NoteCount            int32    `json:"note_count"`
	TotalDurationSeconds int32    `json:"total_duration_seconds"`
	Language             string   `json:"language"`
	ModelUsed            string   `json:"model_used"`
}

const summaryDateLayout = "2006-01-02"

// UpsertSummary persists a period summary, replacing any existing record
// for the same (owner, period type, period start) key.
// POST /api/v1/summaries
func (s *APIV1Service) UpsertSummary(c echo.Context) error {
	var req UpsertSummaryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	periodStart, err := time.Parse(summaryDateLayout, req.PeriodStart)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "period_start must be YYYY-MM-DD"})
	}
	var periodEnd time.Time
	if req.PeriodEnd != "" {
		periodEnd, err = time.Parse(summaryDateLayout, req.PeriodEnd)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "period_end must be YYYY-MM-DD"})
		}
	}

	summary := &store.PeriodSummary{
		OwnerID:              req.OwnerID,
		PeriodType:           store.PeriodType(req.PeriodType),
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		Content:              req.Content,
		KeyTopics:            req.KeyTopics,
		KeyEntities:          req.KeyEntities,
		Sentiment:            req.Sentiment,
		SourceNoteIDs:        req.SourceNoteIDs,
		NoteCount:            req.NoteCount,
		TotalDurationSeconds: req.TotalDurationSeconds,
		Language:             req.Language,
		ModelUsed:            req.ModelUsed,
	}

	rc := observability.NewRequestContext(nil, req.OwnerID)
	ctx := observability.WithRequestContext(c.Request().Context(), rc)

	if err := s.ContextService.SaveSummary(ctx, summary); err != nil {
		code := errcode.CodeOf(err)
		if code == errcode.ErrCodeInvalidArgument {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		rc.Error("summary upsert failed", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": string(code)})
	}
	return c.JSON(http.StatusOK, summary)
}
