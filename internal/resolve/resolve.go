// Package resolve implements import resolution (§4.4): it splices the body
// of every Import node into the expression tree in place, recursively, and
// flattens the synonym declarations contributed by every file it reads into
// a single accumulator.
package resolve

import (
	"os"
	"path/filepath"

	"github.com/5l1v3r1/expresso/internal/ast"
	"github.com/5l1v3r1/expresso/internal/diag"
	"github.com/5l1v3r1/expresso/internal/parser"
	"github.com/5l1v3r1/expresso/internal/token"
)

// resolver carries the library search path and the flat synonym accumulator
// across the recursive splice.
type resolver struct {
	libDirs  []string
	synonyms []*ast.SynonymDecl
}

// Resolve walks rootExpr bottom-up, replacing every Import node with the
// parsed body of the file it names, and returns the spliced expression
// together with every synonym declared anywhere in the import graph
// (rootSynonyms first, then each import's in traversal order). The list
// is flat and not yet checked for name conflicts; call BuildSynonymTable
// on the result to get the name-keyed table the inferencer consults; it
// rejects a name declared twice.
func Resolve(libDirs []string, rootExpr ast.Expr, rootSynonyms []*ast.SynonymDecl) (ast.Expr, []*ast.SynonymDecl, *diag.Error) {
	r := &resolver{libDirs: libDirs, synonyms: append([]*ast.SynonymDecl(nil), rootSynonyms...)}
	out, err := r.splice(rootExpr)
	if err != nil {
		return nil, nil, err
	}
	return out, r.synonyms, nil
}

func (r *resolver) splice(e ast.Expr) (ast.Expr, *diag.Error) {
	switch n := e.(type) {
	case *ast.Import:
		return r.resolveImport(n)
	case *ast.Var, *ast.Prim:
		return e, nil
	case *ast.App:
		fn, err := r.splice(n.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := r.splice(n.Arg)
		if err != nil {
			return nil, err
		}
		return &ast.App{Position: n.Position, Fn: fn, Arg: arg}, nil
	case *ast.Lam:
		body, err := r.splice(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Lam{Position: n.Position, Bind: n.Bind, Body: body}, nil
	case *ast.AnnLam:
		body, err := r.splice(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.AnnLam{Position: n.Position, Bind: n.Bind, Type: n.Type, Body: body}, nil
	case *ast.Let:
		value, err := r.splice(n.Value)
		if err != nil {
			return nil, err
		}
		body, err := r.splice(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Let{Position: n.Position, Bind: n.Bind, Value: value, Body: body}, nil
	case *ast.AnnLet:
		value, err := r.splice(n.Value)
		if err != nil {
			return nil, err
		}
		body, err := r.splice(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.AnnLet{Position: n.Position, Bind: n.Bind, Type: n.Type, Value: value, Body: body}, nil
	case *ast.Ann:
		value, err := r.splice(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Ann{Position: n.Position, Value: value, Type: n.Type}, nil
	}
	return e, nil
}

func (r *resolver) resolveImport(n *ast.Import) (ast.Expr, *diag.Error) {
	path, _, ferr := r.locate(n.Path, n.Position)
	if ferr != nil {
		return nil, ferr
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.New(diag.ErrImportIO, n.Position, "reading %q: %v", path, err)
	}

	body, synonyms, perr := parser.Parse(path, string(src))
	if perr != nil {
		return nil, diag.New(diag.ErrImportParse, n.Position, "parse error in %q: %s", path, perr.Error())
	}

	spliced, serr := r.splice(body)
	if serr != nil {
		return nil, serr
	}
	r.synonyms = append(r.synonyms, synonyms...)
	return spliced, nil
}

// locate resolves path against the library search path (§4.4): an absolute
// path is read directly; a relative path is searched for in libDirs, in
// order, and the first existing file wins.
func (r *resolver) locate(path string, pos token.Position) (string, []string, *diag.Error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", nil, diag.New(diag.ErrImportNotFound, pos, "import %q not found", path)
		}
		return path, nil, nil
	}

	var searched []string
	for _, dir := range r.libDirs {
		candidate := filepath.Join(dir, path)
		searched = append(searched, candidate)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, searched, nil
		}
	}
	return "", searched, diag.New(diag.ErrImportNotFound, pos,
		"import %q not found (searched: %v)", path, searched)
}

// BuildSynonymTable turns the flat synonym list Resolve accumulated into
// the name-keyed lookup table the inferencer expands TSynonym references
// against, rejecting a second declaration of a name already seen earlier
// in the list (first declared wins the position reported in the error).
func BuildSynonymTable(decls []*ast.SynonymDecl) (map[string]*ast.SynonymDecl, *diag.Error) {
	table := make(map[string]*ast.SynonymDecl, len(decls))
	for _, d := range decls {
		if prev, ok := table[d.Name]; ok {
			return nil, diag.New(diag.ErrSynonymConflict, d.Position,
				"synonym %q already declared at %s", d.Name, prev.Position)
		}
		table[d.Name] = d
	}
	return table, nil
}
