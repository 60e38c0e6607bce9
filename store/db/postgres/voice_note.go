package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/voxsense/voxsense/store"
)

func (d *DB) CreateVoiceNote(ctx context.Context, create *store.VoiceNote) (*store.VoiceNote, error) {
	if create.CreatedAt.IsZero() {
		create.CreatedAt = time.Now()
	}
	if create.Status == "" {
		create.Status = store.NoteStatusPending
	}

	fields := []string{"id", "owner_id", "text", "created_at", "duration_seconds", "status"}
	args := []any{create.ID, create.OwnerID, create.Text, create.CreatedAt, create.DurationSeconds, create.Status}

	stmt := `INSERT INTO voice_note (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to create voice_note")
	}

	return create, nil
}

func (d *DB) ListVoiceNotes(ctx context.Context, find *store.FindVoiceNote) ([]*store.VoiceNote, error) {
	if find == nil {
		return nil, errors.New("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.OwnerID != nil {
		where, args = append(where, "owner_id = "+placeholder(len(args)+1)), append(args, *find.OwnerID)
	}
	if find.Status != nil {
		where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, *find.Status)
	}
	if find.CreatedAfter != nil {
		where, args = append(where, "created_at >= "+placeholder(len(args)+1)), append(args, *find.CreatedAfter)
	}
	if find.CreatedBefore != nil {
		where, args = append(where, "created_at < "+placeholder(len(args)+1)), append(args, *find.CreatedBefore)
	}
	if find.OnlyWithText {
		where = append(where, "text IS NOT NULL AND text != ''")
	}

	order := "ASC"
	if find.OrderDesc {
		order = "DESC"
	}

	query := `SELECT id, owner_id, text, created_at, duration_seconds, status
		FROM voice_note WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at ` + order

	limit := find.Limit
	if limit > 0 {
		if limit > 1000 {
			limit = 1000 // Cap to prevent excessive data retrieval
		}
		query += " LIMIT " + strconv.Itoa(limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list voice_notes")
	}
	defer rows.Close()

	list := make([]*store.VoiceNote, 0)
	for rows.Next() {
		n := &store.VoiceNote{}
		if err := rows.Scan(
			&n.ID,
			&n.OwnerID,
			&n.Text,
			&n.CreatedAt,
			&n.DurationSeconds,
			&n.Status,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan voice_note")
		}
		list = append(list, n)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate voice_notes")
	}

	return list, nil
}

func (d *DB) ListActiveOwnerIDs(ctx context.Context, cutoff time.Time) ([]int32, error) {
	query := `SELECT DISTINCT owner_id FROM voice_note WHERE created_at > $1`

	rows, err := d.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active owner IDs")
	}
	defer rows.Close()

	var ownerIDs []int32
	for rows.Next() {
		var ownerID int32
		if err := rows.Scan(&ownerID); err != nil {
			return nil, errors.Wrap(err, "failed to scan owner ID")
		}
		ownerIDs = append(ownerIDs, ownerID)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate owner IDs")
	}

	return ownerIDs, nil
}
