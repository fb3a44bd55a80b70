package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "liquido"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what one layer of a context may import. Paths under
// allowedLayers are relative to the context root; allowedExternal are
// third-party prefixes. The standard library is always allowed.
type layerRule struct {
	allowedLayers   []string
	allowedExternal []string
}

var layerRules = map[string]layerRule{
	"domain": {
		allowedLayers:   []string{"domain"},
		allowedExternal: []string{"golang.org/x/crypto/sha3"},
	},
	"ports": {
		allowedLayers: []string{"domain"},
	},
	"application": {
		allowedLayers: []string{"application", "domain", "ports"},
	},
	"transport": {
		allowedLayers: []string{"transport"},
	},
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Import < b.Import
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		normalized := filepath.ToSlash(path)
		parts := strings.Split(normalized, "/")
		if len(parts) < 4 || parts[0] != "contexts" {
			return nil
		}
		contextRoot := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[1], parts[2])
		violations = append(violations, validateFile(path, normalized, parts[3], contextRoot)...)
		return nil
	})
	return violations
}

func validateFile(path string, normalizedPath string, layer string, contextRoot string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		line := fset.Position(imp.Pos()).Line
		for _, rule := range checkImport(layer, importPath, contextRoot) {
			violations = append(violations, violation{
				File:   normalizedPath,
				Line:   line,
				Import: importPath,
				Rule:   rule,
			})
		}
	}
	return violations
}

// checkImport returns every rule importPath breaks when imported from layer.
func checkImport(layer string, importPath string, contextRoot string) []string {
	var broken []string
	if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, contextRoot) {
		broken = append(broken, "cross-context imports are forbidden")
	}

	rule, ok := layerRules[layer]
	if !ok {
		return broken
	}
	if hasPrefix(importPath, modulePath+"/internal") || hasPrefix(importPath, modulePath+"/cmd") {
		broken = append(broken, layer+" must not import runtime infrastructure")
	}
	if hasPrefix(importPath, contextRoot) {
		target := strings.SplitN(strings.TrimPrefix(importPath, contextRoot+"/"), "/", 2)[0]
		if importPath != contextRoot && !contains(rule.allowedLayers, target) {
			broken = append(broken, fmt.Sprintf("%s must not import %s", layer, target))
		}
		return broken
	}
	if !isStdlib(importPath) && !hasAnyPrefix(importPath, rule.allowedExternal) && !hasPrefix(importPath, modulePath) {
		broken = append(broken, layer+" import is outside explicit allowlist")
	}
	return broken
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPrefix(path, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
