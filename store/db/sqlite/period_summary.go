package sqlite

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

const dateLayout = "2006-01-02"

// UpsertPeriodSummary writes the summary in a single statement keyed by
// (owner_id, period_type, period_start). Last writer wins.
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
			note_count, total_duration_seconds, language, model_used, updated_ts
		) VALUES (` + placeholders(14) + `)
		ON CONFLICT (owner_id, period_type, period_start) DO UPDATE SET
			period_end = excluded.period_end,
			content = excluded.content,
			key_topics = excluded.key_topics,
			key_entities = excluded.key_entities,
			sentiment = excluded.sentiment,
			source_note_ids = excluded.source_note_ids,
			note_count = excluded.note_count,
			total_duration_seconds = excluded.total_duration_seconds,
			language = excluded.language,
			model_used = excluded.model_used,
			updated_ts = excluded.updated_ts`

	args := []any{
		upsert.OwnerID,
		upsert.PeriodType,
		upsert.PeriodStart.Format(dateLayout),
		upsert.PeriodEnd.Format(dateLayout),
		upsert.Content,
		string(topics),
		string(entities),
		upsert.Sentiment,
		string(sourceIDs),
		upsert.NoteCount,
		upsert.TotalDurationSeconds,
		upsert.Language,
		upsert.ModelUsed,
		upsert.UpdatedAt.Unix(),
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
		where, args = append(where, "owner_id = ?"), append(args, *find.OwnerID)
	}
	if find.PeriodType != nil {
		where, args = append(where, "period_type = ?"), append(args, *find.PeriodType)
	}
	if find.PeriodStart != nil {
		where, args = append(where, "period_start = ?"), append(args, find.PeriodStart.Format(dateLayout))
	}
	if find.PeriodStartFrom != nil {
		where, args = append(where, "period_start >= ?"), append(args, find.PeriodStartFrom.Format(dateLayout))
	}
	if find.PeriodStartTo != nil {
		where, args = append(where, "period_start <= ?"), append(args, find.PeriodStartTo.Format(dateLayout))
	}

	order := "ASC"
	if find.OrderDesc {
		order = "DESC"
	}

	query := `SELECT owner_id, period_type, period_start, period_end, content,
			key_topics, key_entities, sentiment, source_note_ids,
			note_count, total_duration_seconds, language, model_used, updated_ts
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
	var periodStart, periodEnd, topics, entities, sourceIDs string
	var updatedTs int64
	if err := rows.Scan(
		&s.OwnerID,
		&s.PeriodType,
		&periodStart,
		&periodEnd,
		&s.Content,
		&topics,
		&entities,
		&s.Sentiment,
		&sourceIDs,
		&s.NoteCount,
		&s.TotalDurationSeconds,
		&s.Language,
		&s.ModelUsed,
		&updatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan period_summary")
	}

	var err error
	if s.PeriodStart, err = time.Parse(dateLayout, periodStart); err != nil {
		return nil, errors.Wrap(err, "failed to parse period start")
	}
	if s.PeriodEnd, err = time.Parse(dateLayout, periodEnd); err != nil {
		return nil, errors.Wrap(err, "failed to parse period end")
	}
	s.UpdatedAt = time.Unix(updatedTs, 0)

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
