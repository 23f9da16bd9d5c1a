package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/stwalsh4118/randwise/api/internal/search"
	"gopkg.in/yaml.v3"
)

// ErrMissingFrontMatter is returned for a post without a leading YAML block.
var ErrMissingFrontMatter = errors.New("missing front matter")

var frontMatterDelim = []byte("---")

// FrontMatter is the metadata block at the top of a blog post.
type FrontMatter struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Date        time.Time `yaml:"date"`
	Tags        []string  `yaml:"tags"`
	Draft       bool      `yaml:"draft"`
}

// BlogSource reads markdown posts from the root of an fs.FS.
type BlogSource struct {
	fsys fs.FS
}

func NewBlogSource(fsys fs.FS) *BlogSource {
	return &BlogSource{fsys: fsys}
}

func (s *BlogSource) Name() string { return string(search.CategoryBlog) }

// Records returns published posts, newest first.
func (s *BlogSource) Records(ctx context.Context) ([]search.Record, error) {
	files, err := fs.Glob(s.fsys, "*.md")
	if err != nil {
		return nil, err
	}

	type post struct {
		slug string
		meta FrontMatter
	}
	posts := make([]post, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := fs.ReadFile(s.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		meta, err := ParseFrontMatter(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if meta.Draft {
			continue
		}
		posts = append(posts, post{slug: strings.TrimSuffix(path.Base(name), ".md"), meta: meta})
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].meta.Date.After(posts[j].meta.Date)
	})

	recs := make([]search.Record, len(posts))
	for i, p := range posts {
		date := p.meta.Date
		recs[i] = search.Record{
			ID:          "blog/" + p.slug,
			Title:       p.meta.Title,
			Description: p.meta.Description,
			Href:        "/blog/" + p.slug,
			Category:    search.CategoryBlog,
			Date:        &date,
			Tags:        p.meta.Tags,
		}
	}
	return recs, nil
}

// ParseFrontMatter decodes the YAML block delimited by "---" lines at the
// start of raw.
func ParseFrontMatter(raw []byte) (FrontMatter, error) {
	var meta FrontMatter

	raw = bytes.TrimLeft(raw, "\ufeff \t\r\n")
	if !bytes.HasPrefix(raw, frontMatterDelim) {
		return meta, ErrMissingFrontMatter
	}
	rest := raw[len(frontMatterDelim):]
	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	if end < 0 {
		return meta, ErrMissingFrontMatter
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, err
	}
	if meta.Title == "" {
		return meta, errors.New("front matter has no title")
	}
	return meta, nil
}
