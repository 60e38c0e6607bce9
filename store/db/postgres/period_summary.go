package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/voxsense/voxsense/store"
)

// UpsertPeriodSummary writes the summary in a single statement keyed by
// (owner_id, period_type, period_start). Last writer wins; updated_at is
// always refreshed.
func (d *DB) UpsertPeriodSummary(ctx context.Context, upsert *store.PeriodSummary) (*store.PeriodSummary, error) {
	topics, err := json.Marshal(upsert.KeyTopics)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal key topics")
	}
	entities, err := json.Marshal(upsert.KeyEntities)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal key entities")
	}
	sourceIDs, err := json.Marshal(upsert.SourceNoteIDs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal source note ids")
	}

	upsert.UpdatedAt = time.Now()

	stmt := `INSERT INTO period_summary (
			owner_id, period_type, period_start, period_end, content,
			key_topics, key_entities, sentiment, source_note_ids,
			note_count, total_duration_seconds, language, model_used, updated_at
		) VALUES (` + placeholders(14) + `)
		ON CONFLICT (owner_id, period_type, period_start) DO UPDATE SET
			period_end = EXCLUDED.period_end,
			content = EXCLUDED.content,
			key_topics = EXCLUDED.key_topics,
			key_entities = EXCLUDED.key_entities,
			sentiment = EXCLUDED.sentiment,
			source_note_ids = EXCLUDED.source_note_ids,
			note_count = EXCLUDED.note_count,
			total_duration_seconds = EXCLUDED.total_duration_seconds,
			language = EXCLUDED.language,
			model_used = EXCLUDED.model_used,
			updated_at = EXCLUDED.updated_at`

	args := []any{
		upsert.OwnerID,
		upsert.PeriodType,
		upsert.PeriodStart,
		upsert.PeriodEnd,
		upsert.Content,
		string(topics),
		string(entities),
		upsert.Sentiment,
		string(sourceIDs),
		upsert.NoteCount,
		upsert.TotalDurationSeconds,
		upsert.Language,
		upsert.ModelUsed,
		upsert.UpdatedAt,
	}

	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to upsert period_summary")
	}

	return upsert, nil
}

// GetPeriodSummary returns the summary matching find, or nil when absent.
func (d *DB) GetPeriodSummary(ctx context.Context, find *store.FindPeriodSummary) (*store.PeriodSummary, error) {
	findCopy := *find
	findCopy.Limit = 1
	list, err := d.ListPeriodSummaries(ctx, &findCopy)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) ListPeriodSummaries(ctx context.Context, find *store.FindPeriodSummary) ([]*store.PeriodSummary, error) {
	if find == nil {
		return nil, errors.New("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}

	if find.OwnerID != nil {
		where, args = append(where, "owner_id = "+placeholder(len(args)+1)), append(args, *find.OwnerID)
	}
	if find.PeriodType != nil {
		where, args = append(where, "period_type = "+placeholder(len(args)+1)), append(args, *find.PeriodType)
	}
	if find.PeriodStart != nil {
		where, args = append(where, "period_start = "+placeholder(len(args)+1)), append(args, find.PeriodStart.Format("2006-01-02"))
	}
	if find.PeriodStartFrom != nil {
		where, args = append(where, "period_start >= "+placeholder(len(args)+1)), append(args, find.PeriodStartFrom.Format("2006-01-02"))
	}
	if find.PeriodStartTo != nil {
		where, args = append(where, "period_start <= "+placeholder(len(args)+1)), append(args, find.PeriodStartTo.Format("2006-01-02"))
	}

	order := "ASC"
	if find.OrderDesc {
		order = "DESC"
	}

	query := `SELECT owner_id, period_type, period_start, period_end, content,
			key_topics, key_entities, sentiment, source_note_ids,
			note_count, total_duration_seconds, language, model_used, updated_at
		FROM period_summary WHERE ` + strings.Join(where, " AND ") + ` ORDER BY period_start ` + order

	if find.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list period_summaries")
	}
	defer rows.Close()

	list := make([]*store.PeriodSummary, 0)
	for rows.Next() {
		summary, err := scanPeriodSummary(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate period_summaries")
	}

	return list, nil
}

func scanPeriodSummary(rows *sql.Rows) (*store.PeriodSummary, error) {
	s := &store.PeriodSummary{}
	var topics, entities, sourceIDs string
	if err := rows.Scan(
		&s.OwnerID,
		&s.PeriodType,
		&s.PeriodStart,
		&s.PeriodEnd,
		&s.Content,
		&topics,
		&entities,
		&s.Sentiment,
		&sourceIDs,
		&s.NoteCount,
		&s.TotalDurationSeconds,
		&s.Language,
		&s.ModelUsed,
		&s.UpdatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan period_summary")
	}
	if err := json.Unmarshal([]byte(topics), &s.KeyTopics); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal key topics")
	}
	if err := json.Unmarshal([]byte(entities), &s.KeyEntities); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal key entities")
	}
	if err := json.Unmarshal([]byte(sourceIDs), &s.SourceNoteIDs); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal source note ids")
	}
	return s, nil
}
