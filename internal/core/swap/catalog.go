package swap

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Category 食材類別
type Category string

const (
	CategoryDairy   Category = "dairy"
	CategoryEggs    Category = "eggs"
	CategoryMeat    Category = "meat"
	CategorySeafood Category = "seafood"
	CategoryOther   Category = "other"
)

// CatalogEntry 非素食食材與其替代品
type CatalogEntry struct {
	Key                string   `yaml:"key" json:"key"`
	Alternatives       []string `yaml:"alternatives" json:"alternatives"`
	DefaultAlternative string   `yaml:"default" json:"defaultAlternative"`
	Ratio              string   `yaml:"ratio" json:"ratio"`
	Notes              string   `yaml:"notes" json:"notes"`
	Category           Category `yaml:"category" json:"category"`
}

// Catalog 依宣告順序排列的替代品目錄，載入後不再變動
type Catalog struct {
	entries    []CatalogEntry
	index      map[string]int
	plantBased []string
	qualifiers []string
}

type catalogFile struct {
	PlantBased []string       `yaml:"plantBased"`
	Qualifiers []string       `yaml:"qualifiers"`
	Entries    []CatalogEntry `yaml:"entries"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// DefaultCatalog 內嵌目錄，只解析一次
func DefaultCatalog() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = LoadCatalog(defaultCatalogYAML)
	})
	return defaultCatalog, defaultCatalogErr
}

// MustDefaultCatalog 內嵌目錄解析失敗時 panic
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog 解析 YAML 目錄
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Entries) == 0 {
		return nil, fmt.Errorf("catalog has no entries")
	}

	c := &Catalog{
		entries: make([]CatalogEntry, 0, len(file.Entries)),
		index:   make(map[string]int, len(file.Entries)),
	}

	for i, e := range file.Entries {
		e.Key = Normalize(e.Key)
		if e.Key == "" {
			return nil, fmt.Errorf("catalog entry %d has empty key", i)
		}
		if _, dup := c.index[e.Key]; dup {
			return nil, fmt.Errorf("duplicate catalog key %q", e.Key)
		}
		if len(e.Alternatives) == 0 {
			return nil, fmt.Errorf("catalog entry %q has no alternatives", e.Key)
		}
		switch e.Category {
		case CategoryDairy, CategoryEggs, CategoryMeat, CategorySeafood, CategoryOther:
		default:
			return nil, fmt.Errorf("catalog entry %q has unknown category %q", e.Key, e.Category)
		}
		if e.DefaultAlternative == "" {
			e.DefaultAlternative = e.Alternatives[0]
		}
		c.index[e.Key] = len(c.entries)
		c.entries = append(c.entries, e)
	}

	for _, p := range file.PlantBased {
		if n := Normalize(p); n != "" {
			c.plantBased = append(c.plantBased, n)
		}
	}
	for _, q := range file.Qualifiers {
		if n := Normalize(q); n != "" {
			c.qualifiers = append(c.qualifiers, n)
		}
	}

	return c, nil
}

// Entries 依宣告順序回傳所有條目的副本
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup 以正規化後的 key 查詢條目
func (c *Catalog) Lookup(key string) (CatalogEntry, bool) {
	i, ok := c.index[Normalize(key)]
	if !ok {
		return CatalogEntry{}, false
	}
	return c.entries[i], true
}

// Len 條目數量
func (c *Catalog) Len() int {
	return len(c.entries)
}
