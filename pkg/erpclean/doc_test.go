package erpclean

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

func TestExportedClientMethodsAreDocumented(t *testing.T) {
	fset := token.NewFileSet()
	for _, name := range []string{"client.go", "operations.go"} {
		file, err := parser.ParseFile(fset, name, nil, parser.ParseComments)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || !fn.Name.IsExported() {
				continue
			}
			if fn.Doc == nil || len(fn.Doc.List) == 0 {
				t.Errorf("%s: method %s has no doc comment", name, fn.Name.Name)
			}
		}
	}
}
