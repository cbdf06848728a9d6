package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/FlowingHeartEggTart/Monster/internal/api"
)

// SQLiteStore persists the companion profile and the mood journal. The
// profile is a single fixed-id row; the Store contract has no error
// returns, so write failures are logged and the caller's in-memory state
// stays authoritative.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

func encodeTraits(traits []string) sql.NullString {
	if len(traits) == 0 {
		return sql.NullString{}
	}
	b, err := json.Marshal(traits)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func decodeTraits(ns sql.NullString) []string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode traits: %v", err)
		return nil
	}
	return out
}

func (s *SQLiteStore) PutProfile(p *api.Profile) {
	if p == nil {
		return
	}
	_, err := s.db.Exec(`
		INSERT INTO companion_profile (
			id, archetype, name, match_score, match_reason, traits, greeting,
			cake_count, sos_success_count, daily_mindfulness_done,
			daily_lighthouse_done, last_reset_date, total_days, created_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			archetype = excluded.archetype,
			name = excluded.name,
			match_score = excluded.match_score,
			match_reason = excluded.match_reason,
			traits = excluded.traits,
			greeting = excluded.greeting,
			cake_count = excluded.cake_count,
			sos_success_count = excluded.sos_success_count,
			daily_mindfulness_done = excluded.daily_mindfulness_done,
			daily_lighthouse_done = excluded.daily_lighthouse_done,
			last_reset_date = excluded.last_reset_date,
			total_days = excluded.total_days,
			created_at = excluded.created_at`,
		p.Archetype, p.Name, p.MatchScore, p.MatchReason, encodeTraits(p.Traits), p.Greeting,
		p.CakeCount, p.SOSSuccessCount, boolToInt64(p.DailyMindfulnessDone),
		boolToInt64(p.DailyLighthouseDone), p.LastResetDate, p.TotalDays,
		p.CreatedAt.UTC().Format(time.RFC3339Nano))
	s.logErr("put profile", err)
}

func (s *SQLiteStore) GetProfile() *api.Profile {
	row := s.db.QueryRow(`
		SELECT archetype, name, match_score, match_reason, traits, greeting,
			cake_count, sos_success_count, daily_mindfulness_done,
			daily_lighthouse_done, last_reset_date, total_days, created_at
		FROM companion_profile WHERE id = 1`)

	var p api.Profile
	var reason, greeting sql.NullString
	var traits sql.NullString
	var mindfulness, lighthouse int64
	var createdAt string
	err := row.Scan(&p.Archetype, &p.Name, &p.MatchScore, &reason, &traits, &greeting,
		&p.CakeCount, &p.SOSSuccessCount, &mindfulness, &lighthouse,
		&p.LastResetDate, &p.TotalDays, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get profile", err)
		return nil
	}
	p.MatchReason = reason.String
	p.Greeting = greeting.String
	p.Traits = decodeTraits(traits)
	p.DailyMindfulnessDone = int64ToBool(mindfulness)
	p.DailyLighthouseDone = int64ToBool(lighthouse)
	if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
		p.CreatedAt = t
	}
	return &p
}

func (s *SQLiteStore) DeleteProfile() bool {
	res, err := s.db.Exec(`DELETE FROM companion_profile WHERE id = 1`)
	if err != nil {
		s.logErr("delete profile", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) AddMood(m *api.MoodRecord) {
	if m == nil {
		return
	}
	_, err := s.db.Exec(`INSERT INTO mood_entries (id, mood, note, created_at) VALUES (?, ?, ?, ?)`,
		m.ID, m.Mood, m.Note, m.CreatedAt.UTC().Format(time.RFC3339Nano))
	s.logErr("add mood", err)
}

func (s *SQLiteStore) ListMoods() []*api.MoodRecord {
	rows, err := s.db.Query(`SELECT id, mood, note, created_at FROM mood_entries ORDER BY created_at, id`)
	if err != nil {
		s.logErr("list moods", err)
		return nil
	}
	defer func() { _ = rows.Close() }()

	var out []*api.MoodRecord
	for rows.Next() {
		var m api.MoodRecord
		var note sql.NullString
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Mood, &note, &createdAt); err != nil {
			s.logErr("scan mood", err)
			continue
		}
		m.Note = note.String
		if t, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
			m.CreatedAt = t
		}
		out = append(out, &m)
	}
	s.logErr("iterate moods", rows.Err())
	return out
}

func (s *SQLiteStore) ClearMoods() int {
	res, err := s.db.Exec(`DELETE FROM mood_entries`)
	if err != nil {
		s.logErr("clear moods", err)
		return 0
	}
	n, _ := res.RowsAffected()
	return int(n)
}

var _ api.Store = (*SQLiteStore)(nil)
