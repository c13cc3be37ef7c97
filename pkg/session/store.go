// Package session persists grocer sessions as one JSON file per session in
// the data dir, plus a small current.json pointer naming the active session.
//
// The store is the sole owner of persisted session bytes. Writes are full
// overwrites through a temp file + rename, so a single writer never leaves a
// torn file; there is no cross-process locking, and concurrent invocations
// against the same session resolve last-write-wins.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/entrhq/grocer/pkg/logging"
	"github.com/entrhq/grocer/pkg/models"
)

const currentPointerFile = "current.json"

// Store loads and saves sessions under a single directory.
type Store struct {
	dir string
	log *logging.Logger
}

// NewStore creates a store rooted at dir, creating the directory if needed.
// The logger may be nil.
func NewStore(dir string, log *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Dir returns the directory the store persists into.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

var idSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// makeID derives a date-based identifier from the optional session name,
// suffixing a counter when a session with that id already exists.
func (s *Store) makeID(name string, now time.Time) string {
	slug := "session"
	if name != "" {
		slug = idSanitizer.ReplaceAllString(strings.ToLower(strings.ReplaceAll(name, " ", "-")), "")
		if slug == "" {
			slug = "session"
		}
	}
	base := fmt.Sprintf("%s-%s", now.Format("2006-01-02"), slug)

	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(s.sessionPath(id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// Create allocates a fresh session, seeds its extra items from the given
// staples, persists it, and points current at it.
func (s *Store) Create(name string, staples []models.Staple) (*models.Session, error) {
	now := time.Now().UTC()
	sess := &models.Session{
		Version:              models.SchemaVersion,
		ID:                   s.makeID(name, now),
		Name:                 name,
		CreatedAt:            now,
		UpdatedAt:            now,
		Recipes:              []models.Recipe{},
		ExtraItems:           []models.RawIngredient{},
		ProcessedIngredients: []models.ProcessedIngredient{},
	}
	for _, staple := range staples {
		sess.ExtraItems = append(sess.ExtraItems, models.RawIngredient{
			Text:        staple.EntryText(),
			SourceLabel: models.SourceStaple,
		})
	}

	if err := s.Save(sess); err != nil {
		return nil, err
	}
	if err := s.setCurrent(sess.ID); err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Infof("created session %s (%d staples seeded)", sess.ID, len(staples))
	}
	return sess, nil
}

// Save updates the session's UpdatedAt and overwrites its persisted
// representation in full.
func (s *Store) Save(sess *models.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	return s.writeJSON(s.sessionPath(sess.ID), sess)
}

// Load reads the session with the given id.
func (s *Store) Load(id string) (*models.Session, error) {
	data, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to read session %q: %w", id, err)
	}
	return decode(id, data)
}

// LoadCurrent reads the session the current pointer names.
func (s *Store) LoadCurrent() (*models.Session, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, currentPointerFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to read current pointer: %w", err)
	}

	var pointer struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &pointer); err != nil || pointer.ID == "" {
		return nil, fmt.Errorf("%w: unreadable current pointer", ErrCorruptSession)
	}
	return s.Load(pointer.ID)
}

// setCurrent re-points the current pointer cell at the given id.
func (s *Store) setCurrent(id string) error {
	pointer := struct {
		ID string `json:"id"`
	}{ID: id}
	return s.writeJSON(filepath.Join(s.dir, currentPointerFile), pointer)
}

// Finalize marks the session finalized with its rendered output path and
// persists it.
func (s *Store) Finalize(sess *models.Session, outputPath string) error {
	sess.Finalized = true
	sess.OutputPath = outputPath
	return s.Save(sess)
}

// ListAll returns every persisted session, in lexicographic id order. The
// current pointer file is excluded, and files that fail to decode are
// skipped with a warning rather than failing the listing.
func (s *Store) ListAll() ([]*models.Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	var sessions []*models.Session
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == currentPointerFile || name == "staples.json" {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		sess, err := s.Load(id)
		if err != nil {
			if s.log != nil {
				s.log.Warnf("skipping unreadable session file %s: %v", name, err)
			}
			continue
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

// OpenAsCurrent loads a session, clears its finalized flag so it can be
// edited again, persists it, and re-points current at it.
func (s *Store) OpenAsCurrent(id string) (*models.Session, error) {
	sess, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	sess.Finalized = false
	if err := s.Save(sess); err != nil {
		return nil, err
	}
	if err := s.setCurrent(sess.ID); err != nil {
		return nil, err
	}
	return sess, nil
}

// decode unmarshals a persisted session and validates its schema version.
func decode(id string, data []byte) (*models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: session %q: %v", ErrCorruptSession, id, err)
	}
	if sess.Version != models.SchemaVersion {
		return nil, fmt.Errorf("%w: session %q has schema version %d, want %d",
			ErrCorruptSession, id, sess.Version, models.SchemaVersion)
	}
	return &sess, nil
}

// writeJSON persists v at path via a temp file and atomic rename.
func (s *Store) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// IsNotFound reports whether err is a session lookup failure, either kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrNoActiveSession)
}
