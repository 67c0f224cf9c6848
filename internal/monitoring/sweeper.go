package monitoring

import (
	"database/sql"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// graceAge protects files from requests still in flight: a just-written
// upload may not be referenced by any row yet.
const graceAge = time.Hour

// Sweeper periodically removes uploaded image files that no user or place
// row references anymore. Failed requests normally clean up after
// themselves; the sweeper catches whatever slipped through a crash.
type Sweeper struct {
	db        *sql.DB
	uploadDir string
	schedule  cron.Schedule
	done      chan bool
}

// NewSweeper creates a sweeper running on the given cron expression.
func NewSweeper(db *sql.DB, uploadDir, cronExpr string) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		db:        db,
		uploadDir: uploadDir,
		schedule:  schedule,
		done:      make(chan bool),
	}, nil
}

// Run starts the sweep loop.
func (s *Sweeper) Run() {
	log.Info().Str("dir", s.uploadDir).Msg("Starting upload sweeper")
	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping upload sweeper")
			return
		case <-timer.C:
			s.sweep()
		}
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.done <- true
}

func (s *Sweeper) sweep() {
	referenced, err := s.referencedImages()
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to list referenced images")
		return
	}

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		log.Error().Err(err).Str("dir", s.uploadDir).Msg("Sweeper: failed to read upload directory")
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || time.Since(info.ModTime()) < graceAge {
			continue
		}
		target := filepath.Join(s.uploadDir, entry.Name())
		if err := os.Remove(target); err != nil {
			log.Warn().Err(err).Str("path", target).Msg("Sweeper: failed to remove orphaned file")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Sweeper: removed orphaned upload files")
	}
}

// referencedImages returns the base names of every image path recorded on a
// user or place row.
func (s *Sweeper) referencedImages() (map[string]bool, error) {
	referenced := make(map[string]bool)
	for _, query := range []string{
		"SELECT image FROM users WHERE image IS NOT NULL AND image != ''",
		"SELECT image FROM places WHERE image IS NOT NULL AND image != ''",
	} {
		rows, err := s.db.Query(query)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var image string
			if err := rows.Scan(&image); err != nil {
				rows.Close()
				return nil, err
			}
			referenced[path.Base(image)] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return referenced, nil
}
