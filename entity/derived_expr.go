package entity

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RegisterDerivedExpr declares a Derived property whose Compute is an
// expr-lang program instead of a Go closure: deps are bound into the
// expression's environment under their own names, and the program is
// compiled exactly once, at registration, generalizing the teacher's
// ConditionEvaluator (which compiles and caches one expr.Program per
// distinct condition string) to derived-property computation.
func RegisterDerivedExpr(s *Store, entityType, name string, deps []string, source string) (*Descriptor, error) {
	env := make(map[string]any, len(deps))
	for _, d := range deps {
		env[d] = nil
	}
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, err
	}
	return RegisterProperty(s, entityType, name, Derived, nil, deps, func(vals []any) any {
		return runExprProgram(program, deps, vals)
	}), nil
}

func runExprProgram(program *vm.Program, deps []string, vals []any) any {
	env := make(map[string]any, len(deps))
	for i, d := range deps {
		env[d] = vals[i]
	}
	out, err := expr.Run(program, env)
	if err != nil {
		panic(err)
	}
	return out
}
