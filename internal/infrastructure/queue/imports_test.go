package queue

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const apiLayer = "github.com/aerolux/concierge-admin/internal/api"

// Core and infrastructure packages sit below the HTTP layer and must not
// import it.
func TestLowerLayersDoNotImportAPI(t *testing.T) {
	for _, root := range []string{"..", filepath.Join("..", "..", "core")} {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
				return err
			}
			f, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ImportsOnly)
			if err != nil {
				return err
			}
			for _, imp := range f.Imports {
				p, _ := strconv.Unquote(imp.Path.Value)
				if p == apiLayer || strings.HasPrefix(p, apiLayer+"/") {
					t.Errorf("%s imports %s", path, p)
				}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("walk %s: %v", root, err)
		}
	}
}
