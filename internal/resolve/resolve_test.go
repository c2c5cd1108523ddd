package resolve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/5l1v3r1/expresso/internal/ast"
	"github.com/5l1v3r1/expresso/internal/parser"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile(%q): %v", path, err)
	}
	return path
}

func TestResolveSplicesImportBody(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "const.expresso", "42")

	root, synonyms, perr := parser.Parse("root.expresso", `import "const.expresso"`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}

	out, allSynonyms, rerr := Resolve([]string{dir}, root, synonyms)
	if rerr != nil {
		t.Fatalf("Resolve failed: %v", rerr)
	}
	if len(allSynonyms) != 0 {
		t.Errorf("expected no synonyms, got %d", len(allSynonyms))
	}
	prim, ok := out.(*ast.Prim)
	if !ok || prim.Tag != ast.PInt || prim.IntVal != 42 {
		t.Fatalf("got %#v, want Prim{Tag: PInt, IntVal: 42}", out)
	}
}

func TestResolveSplicesNestedImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "leaf.expresso", "1")
	writeFile(t, dir, "mid.expresso", `import "leaf.expresso"`)

	root, synonyms, perr := parser.Parse("root.expresso", `import "mid.expresso"`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}

	out, _, rerr := Resolve([]string{dir}, root, synonyms)
	if rerr != nil {
		t.Fatalf("Resolve failed: %v", rerr)
	}
	prim, ok := out.(*ast.Prim)
	if !ok || prim.Tag != ast.PInt || prim.IntVal != 1 {
		t.Fatalf("got %#v, want Prim{Tag: PInt, IntVal: 1}", out)
	}
}

func TestResolveSplicesImportInsideApp(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "id.expresso", `\x -> x`)

	root, synonyms, perr := parser.Parse("root.expresso", `(import "id.expresso") 1`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}

	out, _, rerr := Resolve([]string{dir}, root, synonyms)
	if rerr != nil {
		t.Fatalf("Resolve failed: %v", rerr)
	}
	app, ok := out.(*ast.App)
	if !ok {
		t.Fatalf("got %T, want *ast.App", out)
	}
	if _, ok := app.Fn.(*ast.Lam); !ok {
		t.Errorf("Fn: got %T, want *ast.Lam (spliced import body)", app.Fn)
	}
}

func TestResolveFlattensSynonymsAcrossImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.expresso", "type Lib a = {v : a}; 1")

	root, synonyms, perr := parser.Parse("root.expresso", `type Root = Int; import "lib.expresso"`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}

	_, allSynonyms, rerr := Resolve([]string{dir}, root, synonyms)
	if rerr != nil {
		t.Fatalf("Resolve failed: %v", rerr)
	}
	if len(allSynonyms) != 2 {
		t.Fatalf("got %d synonyms, want 2: %#v", len(allSynonyms), allSynonyms)
	}
	if allSynonyms[0].Name != "Root" || allSynonyms[1].Name != "Lib" {
		t.Errorf("got %#v", allSynonyms)
	}
}

func TestResolveAbsolutePathDoesNotNeedLibDirs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "abs.expresso", "7")

	root, synonyms, perr := parser.Parse("root.expresso", `import "`+path+`"`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}

	out, _, rerr := Resolve(nil, root, synonyms)
	if rerr != nil {
		t.Fatalf("Resolve failed: %v", rerr)
	}
	prim, ok := out.(*ast.Prim)
	if !ok || prim.IntVal != 7 {
		t.Fatalf("got %#v", out)
	}
}

func TestResolveMissingFileReportsSearchedDirs(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	root, synonyms, perr := parser.Parse("root.expresso", `import "missing.expresso"`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}

	_, _, rerr := Resolve([]string{dirA, dirB}, root, synonyms)
	if rerr == nil {
		t.Fatal("expected an import-not-found error")
	}
	msg := rerr.Error()
	if !strings.Contains(msg, dirA) || !strings.Contains(msg, dirB) {
		t.Errorf("expected both searched directories in %q", msg)
	}
}

func TestBuildSynonymTableBuildsLookupByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.expresso", "type Lib a = {v : a}; 1")

	root, synonyms, perr := parser.Parse("root.expresso", `type Root = Int; import "lib.expresso"`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	_, allSynonyms, rerr := Resolve([]string{dir}, root, synonyms)
	if rerr != nil {
		t.Fatalf("Resolve failed: %v", rerr)
	}

	table, terr := BuildSynonymTable(allSynonyms)
	if terr != nil {
		t.Fatalf("BuildSynonymTable failed: %v", terr)
	}
	if len(table) != 2 || table["Root"] == nil || table["Lib"] == nil {
		t.Fatalf("got %#v", table)
	}
}

func TestBuildSynonymTableRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.expresso", "type Pair a = {v : a}; 1")

	root, synonyms, perr := parser.Parse("root.expresso", `type Pair a = [a]; import "lib.expresso"`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	_, allSynonyms, rerr := Resolve([]string{dir}, root, synonyms)
	if rerr != nil {
		t.Fatalf("Resolve failed: %v", rerr)
	}

	if _, terr := BuildSynonymTable(allSynonyms); terr == nil {
		t.Fatal("expected a synonym-conflict error: Pair declared twice")
	}
}

func TestResolveNestedParseErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.expresso", "let x = in x")

	root, synonyms, perr := parser.Parse("root.expresso", `import "broken.expresso"`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}

	_, _, rerr := Resolve([]string{dir}, root, synonyms)
	if rerr == nil {
		t.Fatal("expected a nested parse error")
	}
	if !strings.Contains(rerr.Error(), "broken.expresso") {
		t.Errorf("expected the imported file name in %q", rerr.Error())
	}
}
