package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Per turtle mining statistics. Diagnostics only, nothing is read back into
// the miner.
type mineStats struct {
	db *sql.DB
}

type iterationStats struct {
	Turtle    turtleID
	Iteration int
	Started   time.Time
	Ended     time.Time
	Pos       vec3
	Fuel      int
	// Ore blocks mined by vein excursions during the iteration.
	Ores int
}

func openMineStats(path string) (*mineStats, error) {
	if path == "" {
		return nil, fmt.Errorf("empty stats db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS iterations (
			turtle TEXT NOT NULL,
			iteration INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			fuel INTEGER NOT NULL,
			ores INTEGER NOT NULL,
			PRIMARY KEY (turtle, iteration)
		);`,
		`CREATE TABLE IF NOT EXISTS mined (
			turtle TEXT NOT NULL,
			name TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (turtle, name)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("stats db %s: %w", path, err)
		}
	}
	return &mineStats{db: db}, nil
}

func (s *mineStats) close() error {
	return s.db.Close()
}

// Counts every dug block that the map knew the name of.
func (s *mineStats) event(ev mineEvent) {
	if ev.Kind != evDig || ev.Name == "" {
		return
	}
	if err := s.addMined(ev.Turtle, ev.Name, 1); err != nil {
		log.Printf("stats: error: %v", err)
	}
}

func (s *mineStats) addMined(t turtleID, name string, n int) error {
	_, err := s.db.Exec(`INSERT INTO mined (turtle, name, count) VALUES (?, ?, ?)
		ON CONFLICT (turtle, name) DO UPDATE SET count = count + excluded.count`,
		string(t), name, n)
	return err
}

func (s *mineStats) recordIteration(it iterationStats) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO iterations
		(turtle, iteration, started_at, ended_at, x, y, z, fuel, ores)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(it.Turtle), it.Iteration,
		it.Started.UTC().Format(time.RFC3339), it.Ended.UTC().Format(time.RFC3339),
		it.Pos[0], it.Pos[1], it.Pos[2], it.Fuel, it.Ores)
	return err
}

// Blocks dug by a turtle, by name.
func (s *mineStats) minedTotals(t turtleID) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT name, count FROM mined WHERE turtle = ?`, string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, rows.Err()
}

// Number of recorded iterations and the ore mined in them.
func (s *mineStats) iterationTotals(t turtleID) (iterations int, ores int, err error) {
	err = s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(ores), 0) FROM iterations WHERE turtle = ?`,
		string(t)).Scan(&iterations, &ores)
	return iterations, ores, err
}

// Highest recorded iteration number, so a reconnecting turtle keeps counting.
func (s *mineStats) lastIteration(t turtleID) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(iteration), 0) FROM iterations WHERE turtle = ?`,
		string(t)).Scan(&n)
	return n, err
}
