package catalog

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/onnwee/tagqa/internal/ranking"
)

// Selection is the annotator's choice of ranking. Task, Method and
// Embedding apply to tag retrieval; Model applies to style retrieval.
type Selection struct {
	Task      string `json:"task,omitempty"`
	Method    string `json:"method,omitempty"`
	Embedding string `json:"embedding,omitempty"`
	Model     string `json:"model,omitempty"`
	Tag       string `json:"tag"`
}

// Group returns the key the selection's tag is listed under.
func (s Selection) Group(format string) string {
	if format == ranking.FormatTagRetrieval {
		return s.Task
	}
	return s.Model
}

// WithDefaults fills empty fields with the first configured option and
// the first tag of the chosen group.
func (c *Catalog) WithDefaults(s Selection) Selection {
	first := func(v string, opts []string) string {
		if v == "" && len(opts) > 0 {
			return opts[0]
		}
		return v
	}
	if c.format == ranking.FormatTagRetrieval {
		s.Task = first(s.Task, c.tasks)
		s.Method = first(s.Method, c.methods)
		s.Embedding = first(s.Embedding, c.embeddings)
	} else {
		s.Model = first(s.Model, c.models)
	}
	s.Tag = first(s.Tag, c.tags[s.Group(c.format)])
	return s
}

// Validate checks every field of s against the catalog.
func (s Selection) Validate(c *Catalog) error {
	check := func(field, v string, opts []string) error {
		if !slices.Contains(opts, v) {
			return fmt.Errorf("%w: unknown %s %q", ErrInvalidSelection, field, v)
		}
		return nil
	}

	if c.format == ranking.FormatTagRetrieval {
		if err := check("task", s.Task, c.tasks); err != nil {
			return err
		}
		if err := check("method", s.Method, c.methods); err != nil {
			return err
		}
		if err := check("embedding", s.Embedding, c.embeddings); err != nil {
			return err
		}
	} else if err := check("model", s.Model, c.models); err != nil {
		return err
	}

	if !c.HasTag(s.Group(c.format), s.Tag) {
		return fmt.Errorf("%w: unknown tag %q", ErrInvalidSelection, s.Tag)
	}
	return nil
}

// RankingPath returns the ranking file of a validated selection.
func (c *Catalog) RankingPath(s Selection) (string, error) {
	if err := s.Validate(c); err != nil {
		return "", err
	}
	if c.format == ranking.FormatTagRetrieval {
		return filepath.Join(c.rankingsDir, s.Method, s.Task, s.Embedding, s.Tag+TagRankingSuffix), nil
	}
	return filepath.Join(c.rankingsDir, s.Model, s.Tag+StyleRankingSuffix), nil
}
