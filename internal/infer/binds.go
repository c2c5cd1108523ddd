package infer

import (
	"github.com/5l1v3r1/expresso/internal/ast"
	"github.com/5l1v3r1/expresso/internal/diag"
	"github.com/5l1v3r1/expresso/internal/types"
	"github.com/5l1v3r1/expresso/internal/unify"
)

// tiBinds computes the term-variable types a Bind introduces when
// matched against ty, the already (partially) inferred type of the
// bound position. It does not itself generalise anything — callers
// (ti's Lam/Let/AnnLam/AnnLet cases) decide whether the result gets
// wrapped in a Scheme or used monomorphically.
func (s *TIState) tiBinds(b ast.Bind, ty types.Type) (map[string]types.Type, *diag.Error) {
	switch n := b.(type) {
	case *ast.Arg:
		return map[string]types.Type{n.Name: ty}, nil

	case *ast.RecArg:
		fresh := s.freshSrc()
		rowVar := fresh.Var(types.Row)
		labels := make([]types.RowLabel, 0, len(n.Fields))
		out := make(map[string]types.Type, len(n.Fields))
		lacks := map[string]bool{}
		for _, f := range n.Fields {
			lacks[f.Label] = true
		}
		rowVar.Constraint.Lacks = lacks
		for _, f := range n.Fields {
			fv := types.TVar{V: fresh.Var(types.Star)}
			labels = append(labels, types.RowLabel{Label: f.Label, Type: fv})
			out[f.LocalName] = fv
		}
		row := types.MkRowType(labels, types.TVar{V: rowVar})
		s1, err := unify.Unify(s.subst, fresh, ty, types.TRecord{Row: row}, b.BindPos())
		if err != nil {
			return nil, err
		}
		s.subst = s1
		for k, v := range out {
			out[k] = types.Apply(s.subst, v)
		}
		return out, nil

	case *ast.RecWildcard:
		resolved := types.Apply(s.subst, ty)
		rec, ok := resolved.(types.TRecord)
		if !ok {
			return nil, diag.New(diag.ErrRecordWildcard, b.BindPos(),
				"{..} requires a known record type; annotate this binder")
		}
		labels, tail := types.RowToList(rec.Row)
		if _, closed := tail.(types.TRowEmpty); !closed {
			return nil, diag.New(diag.ErrRecordWildcard, b.BindPos(),
				"{..} requires a fully resolved, closed record type; annotate this binder")
		}
		out := make(map[string]types.Type, len(labels))
		for _, l := range labels {
			out[l.Label] = l.Type
		}
		return out, nil
	}
	return nil, diag.New(diag.ErrUnboundVar, b.BindPos(), "unsupported binder form")
}
