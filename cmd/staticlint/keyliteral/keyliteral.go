// Package keyliteral defines an analyzer that reports string literals shaped
// like platform API keys. Keys are JWTs whose header and payload segments are
// base64url-encoded JSON objects, so both start with "eyJ".
package keyliteral

import (
	"go/ast"
	"go/token"
	"regexp"
	"strconv"

	"golang.org/x/tools/go/analysis"
)

var keyShape = regexp.MustCompile(`eyJ[A-Za-z0-9_-]{8,}\.eyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]*`)

// Analyzer reports hard-coded API keys; they belong in SUPABASE_SERVICE_ROLE_KEY.
var Analyzer = &analysis.Analyzer{
	Name: "keyliteral",
	Doc:  "reports string literals that look like hard-coded platform API keys",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			lit, ok := n.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				return true
			}

			value, err := strconv.Unquote(lit.Value)
			if err != nil {
				return true
			}

			if keyShape.MatchString(value) {
				pass.Reportf(lit.Pos(), "string literal looks like an API key, read it from the environment instead")
			}

			return true
		})
	}
	return nil, nil
}
