package creature

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPageSize is the catalog search page size when none is requested.
const DefaultPageSize = 30

// Species is a catalog entry: the base creature plus its scannable QR code.
type Species struct {
	Creature `yaml:",inline"`
	QRCode   string `yaml:"qr_code"`
}

// Validate checks catalog entry invariants.
//
// Postcondition: Returns nil iff ID >= 1, Name is non-empty, Rarity is a known
// tier and 0 <= HP <= MaxHP.
func (s *Species) Validate() error {
	if s.ID < 1 {
		return fmt.Errorf("species %q: id must be >= 1", s.Name)
	}
	if s.Name == "" {
		return fmt.Errorf("species %d: name must not be empty", s.ID)
	}
	if !KnownRarity(s.Rarity) {
		return fmt.Errorf("species %d: unknown rarity %q", s.ID, s.Rarity)
	}
	if s.HP < 0 || s.HP > s.MaxHP {
		return fmt.Errorf("species %d: hp %d must be within [0, max_hp %d]", s.ID, s.HP, s.MaxHP)
	}
	return nil
}

type catalogFile struct {
	Species []Species `yaml:"species"`
}

// Catalog is an immutable index of species by id and QR code.
// It is safe for concurrent reads.
type Catalog struct {
	ordered []Species
	byID    map[int]Species
	byQR    map[string]Species
}

// NewCatalog indexes species.
//
// Precondition: each entry must pass Validate.
// Postcondition: Returns an error on duplicate ids or QR codes.
func NewCatalog(species []Species) (*Catalog, error) {
	c := &Catalog{
		byID: make(map[int]Species, len(species)),
		byQR: make(map[string]Species),
	}
	for i := range species {
		s := species[i]
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("species %d: duplicate id", s.ID)
		}
		c.byID[s.ID] = s
		if s.QRCode != "" {
			key := strings.ToUpper(s.QRCode)
			if _, dup := c.byQR[key]; dup {
				return nil, fmt.Errorf("species %d: duplicate qr_code %q", s.ID, s.QRCode)
			}
			c.byQR[key] = s
		}
		c.ordered = append(c.ordered, s)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })
	return c, nil
}

// LoadCatalogFromBytes parses a YAML document with a top-level species list.
func LoadCatalogFromBytes(data []byte) ([]Species, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	return f.Species, nil
}

// LoadCatalog reads every *.yaml file in dir into one Catalog.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the catalog or the first read, parse or index error.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog dir %q: %w", dir, err)
	}

	var all []Species
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		species, err := LoadCatalogFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		all = append(all, species...)
	}
	return NewCatalog(all)
}

// Len returns the number of species.
func (c *Catalog) Len() int { return len(c.ordered) }

// Creatures returns every species' base creature, ordered by id.
func (c *Catalog) Creatures() []Creature {
	out := make([]Creature, len(c.ordered))
	for i, s := range c.ordered {
		out[i] = s.Creature
	}
	return out
}

// ByID looks up a species by catalog id.
func (c *Catalog) ByID(id int) (Species, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// ByQRCode looks up a species by QR code, ignoring case and surrounding space.
func (c *Catalog) ByQRCode(code string) (Species, bool) {
	s, ok := c.byQR[strings.ToUpper(strings.TrimSpace(code))]
	return s, ok
}

// Types returns the distinct type labels in catalog order.
func (c *Catalog) Types() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range c.ordered {
		if s.Type != "" && !seen[s.Type] {
			seen[s.Type] = true
			out = append(out, s.Type)
		}
	}
	return out
}

// Query selects catalog entries. Empty fields match everything.
type Query struct {
	Name   string
	Type   string
	Offset int
	Limit  int
}

// Page is one window of search results.
type Page struct {
	Species []Species
	Total   int
	HasMore bool
}

// Search filters by case-insensitive name substring and exact type, ordered by id.
//
// Postcondition: len(result.Species) <= limit (DefaultPageSize when q.Limit <= 0);
// result.Total counts every match regardless of paging.
func (c *Catalog) Search(q Query) Page {
	name := strings.ToLower(strings.TrimSpace(q.Name))
	typ := strings.ToLower(strings.TrimSpace(q.Type))

	var matches []Species
	for _, s := range c.ordered {
		if name != "" && !strings.Contains(strings.ToLower(s.Name), name) {
			continue
		}
		if typ != "" && strings.ToLower(s.Type) != typ {
			continue
		}
		matches = append(matches, s)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}

	page := make([]Species, end-offset)
	copy(page, matches[offset:end])
	return Page{Species: page, Total: len(matches), HasMore: end < len(matches)}
}
