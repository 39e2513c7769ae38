package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domain "github.com/HUSIN-Network/systemeio-publisher/internal/domain"
)

type staticDocument struct {
	Title string
	Body  template.HTML
}

type staticFrontMatter struct {
	Title string `yaml:"title"`
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// loadStaticDocument prefers an override file in the content directory; a
// missing or malformed override falls back to the embedded copy.
func (r *Renderer) loadStaticDocument(name domain.PageName) (staticDocument, error) {
	slug := string(name)
	if r.contentDir != "" {
		path := filepath.Join(r.contentDir, slug+".md")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			doc, parseErr := r.parseStaticDocument(slug, data)
			if parseErr == nil {
				return doc, nil
			}
			r.logger.Warn("static content override invalid, using embedded copy",
				zap.String("page", slug),
				zap.String("path", path),
				zap.Error(parseErr))
		case !errors.Is(err, fs.ErrNotExist):
			r.logger.Warn("static content override unreadable, using embedded copy",
				zap.String("page", slug),
				zap.String("path", path),
				zap.Error(err))
		}
	}

	data, err := contentFS.ReadFile("content/" + slug + ".md")
	if err != nil {
		return staticDocument{}, fmt.Errorf("renderer: embedded content for %s: %w", slug, err)
	}
	return r.parseStaticDocument(slug, data)
}

func (r *Renderer) parseStaticDocument(slug string, data []byte) (staticDocument, error) {
	fm, body := splitFrontMatter(string(data))
	front := staticFrontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return staticDocument{}, fmt.Errorf("renderer: parse front matter: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(body), &buf); err != nil {
		return staticDocument{}, fmt.Errorf("renderer: render markdown: %w", err)
	}

	title := strings.TrimSpace(front.Title)
	if title == "" {
		title = prettifySlug(slug)
	}
	return staticDocument{
		Title: title,
		Body:  template.HTML(r.policy.Sanitize(buf.String())),
	}, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 {
		return "", ""
	}
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func prettifySlug(slug string) string {
	parts := strings.Split(strings.TrimSpace(slug), "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
