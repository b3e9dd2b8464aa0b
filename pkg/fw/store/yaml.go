package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/komsit37/fw/pkg/fw/types"
)

// document is the on-disk shape of a YAMLStore file.
type document struct {
	Sort     string                `yaml:"sort,omitempty"`
	Funds    []types.FundConfig    `yaml:"funds"`
	Holidays types.HolidayCalendar `yaml:"holidays,omitempty"`
}

// YAMLStore keeps everything in a single YAML file. A missing file reads as
// empty.
type YAMLStore struct {
	path string
	mu   sync.Mutex
}

func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

func (s *YAMLStore) Funds() ([]types.FundConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Funds, nil
}

func (s *YAMLStore) SetFunds(funds []types.FundConfig) error {
	return s.update(func(d *document) { d.Funds = funds })
}

func (s *YAMLStore) SortMode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return "", err
	}
	return doc.Sort, nil
}

func (s *YAMLStore) SetSortMode(mode string) error {
	return s.update(func(d *document) { d.Sort = mode })
}

func (s *YAMLStore) Holidays() (types.HolidayCalendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Holidays, nil
}

func (s *YAMLStore) SetHolidays(cal types.HolidayCalendar) error {
	return s.update(func(d *document) { d.Holidays = cal })
}

func (s *YAMLStore) Close() error { return nil }

func (s *YAMLStore) update(fn func(*document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		// a corrupt file is replaced rather than blocking every write
		doc = document{}
	}
	fn(&doc)
	return s.write(doc)
}

func (s *YAMLStore) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return document{}, nil
	}
	if err != nil {
		return document{}, err
	}
	return parseDocument(data)
}

// parseDocument accepts two shapes:
// 1) a map with sort, funds and holidays keys
// 2) a bare top-level list of funds
func parseDocument(data []byte) (document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var funds []types.FundConfig
		if err2 := yaml.Unmarshal(data, &funds); err2 != nil {
			return document{}, fmt.Errorf("parse yaml store: %w", err)
		}
		doc.Funds = funds
	}
	return doc, nil
}

func (s *YAMLStore) write(doc document) error {
	if doc.Funds == nil {
		doc.Funds = []types.FundConfig{}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
