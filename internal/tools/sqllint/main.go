// Command sqllint checks that every SQL string constant starts with a
// "--sql <uuid>" marker line and that no two statements share a marker.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"donations/internal/infra"
)

var sqlKeywordPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with|create)\b`)

type statement struct {
	file   string
	name   string
	line   int
	marker string
}

type violation struct {
	statement
	message string
}

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}
	os.Exit(run(targets, os.Stderr))
}

func run(targets []string, stderr io.Writer) int {
	var stmts []statement
	var violations []violation
	for _, target := range targets {
		s, v, err := lintTarget(target)
		if err != nil {
			fmt.Fprintf(stderr, "sqllint: %v\n", err)
			return 1
		}
		stmts = append(stmts, s...)
		violations = append(violations, v...)
	}
	violations = append(violations, duplicateMarkers(stmts)...)

	if len(violations) == 0 {
		return 0
	}
	fmt.Fprintln(stderr, "sqllint: SQL audit marker problems")
	for _, v := range violations {
		fmt.Fprintf(stderr, "  %s:%d %s (%s)\n", v.file, v.line, v.message, v.name)
	}
	return 1
}

func lintTarget(target string) ([]statement, []violation, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(target) != ".go" {
			return nil, nil, nil
		}
		return lintFile(target)
	}

	var stmts []statement
	var violations []violation
	err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != target && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		s, v, err := lintFile(path)
		if err != nil {
			return err
		}
		stmts = append(stmts, s...)
		violations = append(violations, v...)
		return nil
	})
	return stmts, violations, err
}

func lintFile(path string) ([]statement, []violation, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, nil, err
	}
	var stmts []statement
	var violations []violation
	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, value := range vs.Values {
			bl, ok := value.(*ast.BasicLit)
			if !ok || bl.Kind != token.STRING {
				continue
			}
			raw, err := strconv.Unquote(bl.Value)
			if err != nil || !sqlKeywordPattern.MatchString(raw) {
				continue
			}
			st := statement{file: path, line: fset.Position(bl.Pos()).Line}
			if i < len(vs.Names) {
				st.name = vs.Names[i].Name
			}
			marker, _, err := infra.SplitMarker(raw)
			if err != nil {
				violations = append(violations, violation{statement: st, message: "missing or invalid --sql <uuid> marker"})
				continue
			}
			st.marker = marker
			stmts = append(stmts, st)
		}
		return true
	})
	return stmts, violations, nil
}

func duplicateMarkers(stmts []statement) []violation {
	first := make(map[string]statement, len(stmts))
	var violations []violation
	for _, st := range stmts {
		if prev, ok := first[st.marker]; ok {
			violations = append(violations, violation{
				statement: st,
				message:   fmt.Sprintf("marker %s already used by %s at %s:%d", st.marker, prev.name, prev.file, prev.line),
			})
			continue
		}
		first[st.marker] = st
	}
	return violations
}
