// Package catalog holds the canonical per-domain topic definitions. The
// catalog is authoritative for topic membership; user progress is reconciled
// against it whenever the lists change between deployments.
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// TopicDef is a canonical topic: a stable id and a display name. Completion
// state lives with the user, never here.
type TopicDef struct {
	ID   int    `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
}

// Domain is one learning track with its ordered topic list.
type Domain struct {
	ID     string     `json:"domainId" mapstructure:"id"`
	Name   string     `json:"domainName" mapstructure:"name"`
	Topics []TopicDef `json:"topics" mapstructure:"topics"`
}

// Catalog indexes domains by slug.
type Catalog struct {
	domains map[string]Domain
	order   []string
}

var slugPattern = regexp.MustCompile(`[/\s]+`)

// Slug derives a domain ID from its display name: lowercased, slashes and
// whitespace collapsed to hyphens.
func Slug(name string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c := &Catalog{domains: make(map[string]Domain)}
	for _, d := range defaultDomains {
		c.add(d)
	}
	return c
}

// Load builds the catalog from defaults plus an optional YAML override file.
// Domains in the file replace built-in domains with the same slug and may add
// new ones. Path "" yields the defaults unchanged.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file struct {
		Domains []Domain `mapstructure:"domains"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	for _, d := range file.Domains {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog domain missing name")
		}
		if err := validateTopics(d.Topics); err != nil {
			return nil, fmt.Errorf("catalog domain %q: %w", d.Name, err)
		}
		c.add(d)
	}
	return c, nil
}

func (c *Catalog) add(d Domain) {
	if d.ID == "" {
		d.ID = Slug(d.Name)
	}
	if _, exists := c.domains[d.ID]; !exists {
		c.order = append(c.order, d.ID)
	}
	c.domains[d.ID] = d
}

// Get returns the domain for a slug.
func (c *Catalog) Get(domainID string) (Domain, bool) {
	d, ok := c.domains[domainID]
	return d, ok
}

// Domains returns all domains in declaration order.
func (c *Catalog) Domains() []Domain {
	out := make([]Domain, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.domains[id])
	}
	return out
}

func validateTopics(topics []TopicDef) error {
	seen := make(map[int]struct{}, len(topics))
	for _, t := range topics {
		if t.Name == "" {
			return fmt.Errorf("topic %d missing name", t.ID)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate topic id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
