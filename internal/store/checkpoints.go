package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rcliao/lesson-studio/internal/model"
)

const checkpointColumns = `id, lesson_version_id, time_sec, type, vocab_id, content`

// ListCheckpoints returns all checkpoints ordered by time, then by their
// position in the list they were saved with.
func (s *SQLStore) ListCheckpoints(ctx context.Context) ([]model.Checkpoint, error) {
	rows, err := s.query(ctx, s.db,
		`SELECT `+checkpointColumns+` FROM checkpoints ORDER BY time_sec, position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cps []model.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		cps = append(cps, cp)
	}
	return cps, rows.Err()
}

// ReplaceCheckpoints swaps the version's checkpoint set for cps. Ids issued
// by the store are kept; placeholder ids are replaced with new ones.
func (s *SQLStore) ReplaceCheckpoints(ctx context.Context, versionID string, cps []model.Checkpoint) ([]model.Checkpoint, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists string
	err = s.queryRow(ctx, tx, `SELECT id FROM lesson_versions WHERE id = ?`, versionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lesson version %s: %w", versionID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.exec(ctx, tx, `DELETE FROM checkpoints WHERE lesson_version_id = ?`, versionID); err != nil {
		return nil, fmt.Errorf("delete checkpoints: %w", err)
	}

	stored := make([]model.Checkpoint, 0, len(cps))
	for i, cp := range cps {
		cp = cp.Clone()
		if !isStoredID(cp.ID) {
			cp.ID = s.newID()
		}
		cp.LessonVersionID = versionID

		typ, vocabID, body, err := model.EncodeContent(cp.Content)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", i, err)
		}
		_, err = s.exec(ctx, tx,
			`INSERT INTO checkpoints (id, lesson_version_id, time_sec, position, type, vocab_id, content)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			cp.ID, versionID, cp.TimeSec, i, string(typ), vocabID, body)
		if err != nil {
			return nil, fmt.Errorf("insert checkpoint: %w", err)
		}
		stored = append(stored, cp)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

func scanCheckpoint(row scanner) (model.Checkpoint, error) {
	var cp model.Checkpoint
	var typ, vocabID, body string
	if err := row.Scan(&cp.ID, &cp.LessonVersionID, &cp.TimeSec, &typ, &vocabID, &body); err != nil {
		return cp, err
	}
	content, err := model.DecodeContent(model.CheckpointType(typ), vocabID, []byte(body))
	if err != nil {
		return cp, fmt.Errorf("checkpoint %s: %w", cp.ID, err)
	}
	cp.Content = content
	return cp, nil
}
