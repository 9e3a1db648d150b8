// # internal/engine/parser/parser.go
package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"rbgraph/internal/core/errors"
	"rbgraph/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

const languageRuby = "ruby"

type Parser struct {
	pool           *ParserPool
	extensions     map[string]bool
	testFileSuffix []string
}

func NewParser() *Parser {
	return NewParserWithSpec(DefaultRubySpec())
}

// NewParserWithSpec lets configuration override extensions and test suffixes.
func NewParserWithSpec(spec LanguageSpec) *Parser {
	lang := sitter.NewLanguage(tree_sitter_ruby.Language())
	p := &Parser{
		pool:       NewParserPool(lang),
		extensions: make(map[string]bool),
	}
	for _, ext := range spec.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		p.extensions[ext] = true
	}
	for _, suffix := range spec.TestFileSuffixes {
		if suffix = strings.TrimSpace(suffix); suffix != "" {
			p.testFileSuffix = append(p.testFileSuffix, suffix)
		}
	}
	sort.Strings(p.testFileSuffix)
	return p
}

// ParseFile parses and lowers one Ruby source. Files with syntax errors are
// rejected as a whole.
func (p *Parser) ParseFile(path string, content []byte) (*SourceFile, error) {
	if !p.IsSupportedPath(path) {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported file type"), errors.CtxPath, path)
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(languageRuby).Observe(time.Since(start).Seconds())
	}()

	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, parseFailed(path, "parser returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		msg := "syntax error"
		if bad := firstError(root); bad != nil {
			loc := (&LoweringContext{Source: content}).Location(path, bad)
			msg = fmt.Sprintf("syntax error at %d:%d", loc.Line, loc.Column)
		}
		return nil, parseFailed(path, msg)
	}

	return &SourceFile{
		Path:     path,
		Root:     Lower(root, content),
		Bytes:    len(content),
		ParsedAt: time.Now(),
	}, nil
}

func parseFailed(path, msg string) error {
	err := errors.New(errors.CodeParseFailed, msg)
	err = errors.AddContext(err, errors.CtxPath, path)
	return errors.AddContext(err, errors.CtxLanguage, languageRuby)
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

func (p *Parser) IsTestFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range p.testFileSuffix {
		if strings.HasSuffix(base, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func (p *Parser) SupportedExtensions() []string {
	out := make([]string, 0, len(p.extensions))
	for ext := range p.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (p *Parser) SupportedTestFileSuffixes() []string {
	return append([]string(nil), p.testFileSuffix...)
}

// Leased reports parsers currently checked out of the pool.
func (p *Parser) Leased() int {
	return p.pool.Stats()
}
