// Package draft keeps in-progress workflow edits on disk, one JSON file per
// endpoint, so an interrupted session can recover and so an external editor
// can be pointed at the file.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mujhtech/b0-console/pkg/models"
)

var ErrDraftNotFound = errors.New("draft not found")

// Draft is one saved editing state.
type Draft struct {
	EndpointID string                `json:"endpoint_id"`
	SavedAt    time.Time             `json:"saved_at"`
	Workflows  []models.WorkflowStep `json:"workflows"`
}

// Store persists drafts under a root directory.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

// Save writes the draft atomically: temp file in the same directory, then
// rename.
func (s *Store) Save(endpointID string, steps []models.WorkflowStep) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create draft directory: %w", err)
	}

	draft := Draft{
		EndpointID: endpointID,
		SavedAt:    time.Now().UTC(),
		Workflows:  steps,
	}

	payload, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, "."+endpointID+"-*")
	if err != nil {
		return fmt.Errorf("create temp draft: %w", err)
	}

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("write draft: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("close draft: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path(endpointID)); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("publish draft: %w", err)
	}

	return nil
}

func (s *Store) Load(endpointID string) (*Draft, error) {
	payload, err := os.ReadFile(s.Path(endpointID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrDraftNotFound
		}

		return nil, fmt.Errorf("read draft: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}

	return &draft, nil
}

func (s *Store) Delete(endpointID string) error {
	err := os.Remove(s.Path(endpointID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// List returns the endpoint ids with saved drafts.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("list drafts: %w", err)
	}

	var ids []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}

// Path is the on-disk location of an endpoint's draft file.
func (s *Store) Path(endpointID string) string {
	return filepath.Join(s.root, endpointID+".json")
}
