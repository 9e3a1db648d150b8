// # internal/engine/parser/pool_test.go
package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

func rubyLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_ruby.Language())
}

func TestParserPool_GetPutTracksLeases(t *testing.T) {
	pool := NewParserPool(rubyLanguage())

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	if got := pool.Stats(); got != 1 {
		t.Fatalf("expected 1 leased parser, got %d", got)
	}

	pool.Put(sp)
	if got := pool.Stats(); got != 0 {
		t.Fatalf("expected no leased parsers after Put, got %d", got)
	}
}

func TestParserPool_PutNil(t *testing.T) {
	pool := NewParserPool(rubyLanguage())
	pool.Put(nil)
	if got := pool.Stats(); got != 0 {
		t.Fatalf("expected 0 leases, got %d", got)
	}
}

func TestParserPool_ParsesValidRuby(t *testing.T) {
	pool := NewParserPool(rubyLanguage())

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse([]byte("class Foo < Bar\n  include Baz\nend\n"), nil)
	if tree == nil {
		t.Fatal("expected non-nil parse tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		t.Fatalf("unexpected syntax error in %s", root.ToSexp())
	}
	if root.Kind() != nodeProgram {
		t.Fatalf("expected program root, got %s", root.Kind())
	}
}

func TestParserPool_ConcurrentAccess(t *testing.T) {
	pool := NewParserPool(rubyLanguage())

	const goroutines = 16
	const iters = 25
	src := []byte("module M\n  class C; end\nend\n")

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iters; j++ {
				sp := pool.Get()
				tree := sp.Parse(src, nil)
				if tree == nil {
					t.Errorf("expected non-nil parse tree")
				} else {
					tree.Close()
				}
				pool.Put(sp)
			}
		}()
	}
	wg.Wait()

	if got := pool.Stats(); got != 0 {
		t.Fatalf("expected all parsers returned, got %d leased", got)
	}
}

func TestParserPool_LanguageSetAfterReset(t *testing.T) {
	pool := NewParserPool(rubyLanguage())

	sp := pool.Get()
	sp.Reset()
	pool.Put(sp)

	sp2 := pool.Get()
	defer pool.Put(sp2)

	tree := sp2.Parse([]byte("class Ok; end\n"), nil)
	if tree == nil {
		t.Fatal("parser should still parse after Reset")
	}
	defer tree.Close()
}
