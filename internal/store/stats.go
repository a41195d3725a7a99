package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	Dialect     Dialect     `json:"dialect"`
	DBPath      string      `json:"db_path,omitempty"`
	DBSizeBytes int64       `json:"db_size_bytes,omitempty"`
	Categories  int         `json:"categories"`
	Vocabulary  int         `json:"vocabulary"`
	Units       int         `json:"units"`
	Lessons     int         `json:"lessons"`
	Versions    int         `json:"versions"`
	Checkpoints int         `json:"checkpoints"`
	ByType      []TypeCount `json:"checkpoints_by_type"`
}

// TypeCount is the number of checkpoints of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Stats returns row counts per table.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Dialect: s.dialect, DBPath: s.path}

	if s.path != "" {
		if info, err := os.Stat(s.path); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}

	counts := []struct {
		table string
		dest  *int
	}{
		{"categories", &st.Categories},
		{"vocabulary", &st.Vocabulary},
		{"units", &st.Units},
		{"lessons", &st.Lessons},
		{"lesson_versions", &st.Versions},
		{"checkpoints", &st.Checkpoints},
	}
	for _, c := range counts {
		if err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
			return st, err
		}
	}

	rows, err := s.query(ctx, s.db, `SELECT type, COUNT(*) FROM checkpoints GROUP BY type ORDER BY type`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return st, err
		}
		st.ByType = append(st.ByType, tc)
	}
	return st, rows.Err()
}
