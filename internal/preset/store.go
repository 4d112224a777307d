// Package preset holds per-user brand presets used when generating captions.
package preset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("preset not found")

// Preset describes the voice a caption should be written in.
type Preset struct {
	Name         string   `yaml:"name" json:"name"`
	Tone         string   `yaml:"tone" json:"tone"`
	Language     string   `yaml:"language" json:"language"`
	Hashtags     []string `yaml:"hashtags" json:"hashtags"`
	CallToAction string   `yaml:"call_to_action" json:"call_to_action"`
	UseEmoji     bool     `yaml:"use_emoji" json:"use_emoji"`
}

// Default is returned when a user has not saved any preset.
func Default() Preset {
	return Preset{Name: "default", Tone: "friendly", Language: "en", Hashtags: []string{}}
}

func (p *Preset) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	if p.Tone == "" {
		p.Tone = "friendly"
	}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
}

type Store interface {
	List(userID int64) []Preset
	Get(userID int64, name string) (Preset, error)
	Put(userID int64, p Preset) error
	Delete(userID int64, name string) error
}

type document struct {
	Users map[int64][]Preset `yaml:"users"`
}

// FileStore keeps presets in one YAML file. Every mutation rewrites the file.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	users map[int64][]Preset
}

// OpenFileStore loads path, creating an empty store file if it does not exist.
func OpenFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("preset path is empty")
	}
	s := &FileStore{path: path, users: map[int64][]Preset{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, s.save()
		}
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for id, list := range doc.Users {
		for i := range list {
			list[i].normalize()
		}
		s.users[id] = list
	}
	return s, nil
}

func (s *FileStore) List(userID int64) []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.users[userID]
	if len(list) == 0 {
		return []Preset{Default()}
	}
	return append([]Preset(nil), list...)
}

func (s *FileStore) Get(userID int64, name string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.users[userID] {
		if p.Name == name {
			return p, nil
		}
	}
	if name == "" || name == Default().Name {
		return Default(), nil
	}
	return Preset{}, ErrNotFound
}

func (s *FileStore) Put(userID int64, p Preset) error {
	p.normalize()
	if p.Name == "" {
		return errors.New("preset name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.users[userID]
	replaced := false
	for i := range list {
		if list[i].Name == p.Name {
			list[i] = p
			replaced = true
		}
	}
	if !replaced {
		list = append(list, p)
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	s.users[userID] = list
	return s.save()
}

func (s *FileStore) Delete(userID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.users[userID]
	for i := range list {
		if list[i].Name == name {
			s.users[userID] = append(list[:i:i], list[i+1:]...)
			return s.save()
		}
	}
	return ErrNotFound
}

// save writes the file atomically with 0600 permissions. Callers hold mu.
func (s *FileStore) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(document{Users: s.users})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".presets-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
