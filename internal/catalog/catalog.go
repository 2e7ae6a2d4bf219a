// Package catalog lists the available tags once at startup and resolves
// an annotator's selection to a ranking file path.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/onnwee/tagqa/internal/fsutil"
	"github.com/onnwee/tagqa/internal/ranking"
)

// StyleRankingSuffix ends every style retrieval ranking file name.
const StyleRankingSuffix = "_top_100_activations.tsv"

// TagRankingSuffix ends every tag retrieval ranking file name.
const TagRankingSuffix = ".csv"

// Catalog errors.
var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrNoGroups         = errors.New("catalog has no tasks or models configured")
)

// Default option lists.
var (
	DefaultTasks      = []string{"genre", "moodtheme", "instrument"}
	DefaultMethods    = []string{"baseline", "focalloss", "mlbfo", "mlsmote", "mlsmote_mltl", "mltl"}
	DefaultEmbeddings = []string{"effnet", "vggish"}
	DefaultModels     = []string{"discogs-effnet-bs64-1"}
)

// Config configures Load.
type Config struct {
	// Format is ranking.FormatTagRetrieval or ranking.FormatStyleRetrieval.
	Format      string
	RankingsDir string
	Tasks       []string
	Methods     []string
	Embeddings  []string
	Models      []string
	// FS defaults to the OS filesystem.
	FS fsutil.FileSystem
}

// Catalog is the immutable lookup table built by Load.
type Catalog struct {
	format      string
	rankingsDir string
	tasks       []string
	methods     []string
	embeddings  []string
	models      []string
	tags        map[string][]string
}

// Summary is the JSON view of a Catalog.
type Summary struct {
	Format     string              `json:"format"`
	Tasks      []string            `json:"tasks,omitempty"`
	Methods    []string            `json:"methods,omitempty"`
	Embeddings []string            `json:"embeddings,omitempty"`
	Models     []string            `json:"models,omitempty"`
	Tags       map[string][]string `json:"tags"`
}

// Load scans the rankings directory. Tag names come from the file names
// of the first method and embedding of each task (tag retrieval) or from
// each model directory (style retrieval).
//
// Tags are sorted as plain strings, so "tag10" sorts before "tag2".
// A missing directory is an error; the service cannot start without it.
func Load(cfg Config) (*Catalog, error) {
	fsys := cfg.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}

	c := &Catalog{
		format:      cfg.Format,
		rankingsDir: cfg.RankingsDir,
		tasks:       slices.Clone(cfg.Tasks),
		methods:     slices.Clone(cfg.Methods),
		embeddings:  slices.Clone(cfg.Embeddings),
		models:      slices.Clone(cfg.Models),
		tags:        make(map[string][]string),
	}

	switch cfg.Format {
	case ranking.FormatTagRetrieval:
		if len(c.tasks) == 0 || len(c.methods) == 0 || len(c.embeddings) == 0 {
			return nil, fmt.Errorf("%w: tag retrieval needs tasks, methods and embeddings", ErrNoGroups)
		}
		for _, task := range c.tasks {
			dir := filepath.Join(c.rankingsDir, c.methods[0], task, c.embeddings[0])
			tags, err := listTags(fsys, dir, TagRankingSuffix)
			if err != nil {
				return nil, err
			}
			c.tags[task] = tags
		}
	case ranking.FormatStyleRetrieval:
		if len(c.models) == 0 {
			return nil, fmt.Errorf("%w: style retrieval needs models", ErrNoGroups)
		}
		for _, model := range c.models {
			tags, err := listTags(fsys, filepath.Join(c.rankingsDir, model), StyleRankingSuffix)
			if err != nil {
				return nil, err
			}
			c.tags[model] = tags
		}
	default:
		return nil, fmt.Errorf("%w: %q", ranking.ErrUnknownFormat, cfg.Format)
	}

	return c, nil
}

func listTags(fsys fsutil.FileSystem, dir, suffix string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings in %s: %w", dir, err)
	}

	tags := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		tag, ok := strings.CutSuffix(e.Name(), suffix)
		if !ok || tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// Format returns the ranking format of the catalog.
func (c *Catalog) Format() string { return c.format }

// Tasks returns the configured tasks.
func (c *Catalog) Tasks() []string { return slices.Clone(c.tasks) }

// Methods returns the configured methods.
func (c *Catalog) Methods() []string { return slices.Clone(c.methods) }

// Embeddings returns the configured embeddings.
func (c *Catalog) Embeddings() []string { return slices.Clone(c.embeddings) }

// Models returns the configured models.
func (c *Catalog) Models() []string { return slices.Clone(c.models) }

// Groups returns the keys tags are listed under: tasks for tag
// retrieval, models for style retrieval.
func (c *Catalog) Groups() []string {
	if c.format == ranking.FormatTagRetrieval {
		return c.Tasks()
	}
	return c.Models()
}

// Tags returns the tags of group in catalog order.
func (c *Catalog) Tags(group string) []string {
	return slices.Clone(c.tags[group])
}

// HasTag reports whether tag was found under group.
func (c *Catalog) HasTag(group, tag string) bool {
	return slices.Contains(c.tags[group], tag)
}

// Summary returns a JSON friendly copy of the catalog.
func (c *Catalog) Summary() Summary {
	tags := make(map[string][]string, len(c.tags))
	for g, t := range c.tags {
		tags[g] = slices.Clone(t)
	}
	s := Summary{Format: c.format, Tags: tags}
	if c.format == ranking.FormatTagRetrieval {
		s.Tasks, s.Methods, s.Embeddings = c.Tasks(), c.Methods(), c.Embeddings()
	} else {
		s.Models = c.Models()
	}
	return s
}
