// cmd/pathgen/main.go
package main

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

// This binary is a code-generation tool.
//
// It reads the struct types of one package directory and writes a file of
// path-expression constants for a chosen root type, so builder paths can be
// referenced by name instead of string literals:
//
//	const OrderCustomerName = "o.Customer.Name"
//	func OrderLinesAt(i int) string { return "o.Lines[" + strconv.Itoa(i) + "]" }
//
// Key behaviors:
// - Parses every non-test, non-generated .go file in the directory
// - Follows fields whose type is a struct declared in the same package, up to -depth
// - Emits an ...At helper for slice, array and string/int keyed map fields
// - Writes output atomically (temp file + rename) to avoid partial writes

// CLI is the command-line grammar.
type CLI struct {
	Dir    string `help:"Package directory containing the type." default:"." type:"existingdir"`
	Type   string `help:"Struct type to generate paths for." required:""`
	Root   string `help:"Root identifier used in generated paths." default:"x"`
	Prefix string `help:"Prefix for generated names (defaults to the type name)."`
	Out    string `help:"Output .gen.go file path." required:""`
	Depth  int    `help:"Maximum nesting depth to follow." default:"4"`
}

// PathConst is one generated constant.
type PathConst struct {
	Name string
	Path string
}

// IndexFunc is one generated ...At helper.
type IndexFunc struct {
	Name    string
	Path    string
	ArgType string
	// Render converts the argument to its literal form.
	Render string
}

// templateData is the input passed to the Go template.
type templateData struct {
	Package    string
	Type       string
	Consts     []PathConst
	IndexFuncs []IndexFunc
}

// run executes the generator logic and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1

	parser, err := kong.New(&cli,
		kong.Name("pathgen"),
		kong.Description("Generate builder path constants for a struct type."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		report(stderr, err)
		return 2
	}
	if _, err := parser.Parse(args); err != nil {
		if exitCode >= 0 {
			return exitCode
		}
		report(stderr, err)
		return 2
	}
	if exitCode >= 0 {
		return exitCode
	}

	if err := generate(cli); err != nil {
		report(stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

var errorPrefix = color.New(color.FgRed, color.Bold)

func report(w io.Writer, err error) {
	_, _ = errorPrefix.Fprint(w, "pathgen:")
	_, _ = fmt.Fprintln(w, " "+err.Error())
}

func generate(cli CLI) error {
	if !token.IsIdentifier(cli.Root) {
		return fmt.Errorf("root %q is not an identifier", cli.Root)
	}
	if cli.Prefix == "" {
		cli.Prefix = cli.Type
	}

	pkg, err := loadPackage(cli.Dir)
	if err != nil {
		return err
	}
	if _, ok := pkg.structs[cli.Type]; !ok {
		return fmt.Errorf("struct type %s not found in %s", cli.Type, cli.Dir)
	}

	data := templateData{Package: pkg.name, Type: cli.Type}
	w := walker{pkg: pkg, maxDepth: cli.Depth, data: &data, visiting: map[string]bool{}}
	w.walk(cli.Type, cli.Root, cli.Prefix, 0)
	sort.Slice(data.Consts, func(i, j int) bool { return data.Consts[i].Name < data.Consts[j].Name })

	var out bytes.Buffer
	if err := genTemplate.Execute(&out, data); err != nil {
		return err
	}
	src, err := format.Source(out.Bytes())
	if err != nil {
		return fmt.Errorf("format generated source: %w", err)
	}
	return writeFileAtomic(filepath.Clean(cli.Out), src, 0o644)
}

// pkgInfo is what the generator needs from a package directory.
type pkgInfo struct {
	name    string
	structs map[string]*ast.StructType
}

// loadPackage parses struct declarations from the .go files in dir.
func loadPackage(dir string) (*pkgInfo, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	fileSet := token.NewFileSet()
	pkg := &pkgInfo{structs: map[string]*ast.StructType{}}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ".go") ||
			strings.HasSuffix(fileName, "_test.go") ||
			strings.HasSuffix(fileName, ".gen.go") {
			continue
		}

		parsedFile, err := parser.ParseFile(fileSet, filepath.Join(dir, fileName), nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}
		if pkg.name == "" {
			pkg.name = parsedFile.Name.Name
		}

		for _, decl := range parsedFile.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}
			for _, spec := range genDecl.Specs {
				typeSpec := spec.(*ast.TypeSpec)
				if structType, ok := typeSpec.Type.(*ast.StructType); ok {
					pkg.structs[typeSpec.Name.Name] = structType
				}
			}
		}
	}

	if pkg.name == "" {
		return nil, errors.New("no Go files in " + dir)
	}
	return pkg, nil
}

type walker struct {
	pkg      *pkgInfo
	maxDepth int
	data     *templateData
	visiting map[string]bool
}

// walk emits paths for every exported field of typeName and recurses into
// local struct types. Recursive types stop at the first repetition.
func (w *walker) walk(typeName, path, prefix string, depth int) {
	if depth >= w.maxDepth || w.visiting[typeName] {
		return
	}
	w.visiting[typeName] = true
	defer delete(w.visiting, typeName)

	for _, field := range w.pkg.structs[typeName].Fields.List {
		names := fieldNames(field)
		for _, name := range names {
			if !ast.IsExported(name) {
				continue
			}
			fieldPath := path + "." + name
			fieldPrefix := prefix + name
			w.data.Consts = append(w.data.Consts, PathConst{Name: fieldPrefix, Path: fieldPath})

			if fn, ok := indexFunc(field.Type, fieldPrefix+"At", fieldPath); ok {
				w.data.IndexFuncs = append(w.data.IndexFuncs, fn)
			}
			if nested, ok := w.localStruct(field.Type); ok {
				w.walk(nested, fieldPath, fieldPrefix, depth+1)
			}
		}
	}
}

// fieldNames returns the declared names, or the type name for embedded fields.
func fieldNames(field *ast.Field) []string {
	if len(field.Names) > 0 {
		out := make([]string, 0, len(field.Names))
		for _, n := range field.Names {
			out = append(out, n.Name)
		}
		return out
	}
	expr := field.Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return []string{t.Name}
	case *ast.SelectorExpr:
		return []string{t.Sel.Name}
	}
	return nil
}

// localStruct reports the name of a struct type declared in the package
// that expr refers to, directly or through a pointer.
func (w *walker) localStruct(expr ast.Expr) (string, bool) {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return "", false
	}
	_, ok = w.pkg.structs[ident.Name]
	return ident.Name, ok
}

// indexFunc builds an ...At helper for slices, arrays and maps keyed by
// string or an integer type.
func indexFunc(expr ast.Expr, name, path string) (IndexFunc, bool) {
	switch t := expr.(type) {
	case *ast.ArrayType:
		return IndexFunc{Name: name, Path: path, ArgType: "int", Render: "strconv.Itoa(key)"}, true
	case *ast.MapType:
		keyIdent, ok := t.Key.(*ast.Ident)
		if !ok {
			return IndexFunc{}, false
		}
		switch keyIdent.Name {
		case "string":
			return IndexFunc{Name: name, Path: path, ArgType: "string", Render: "strconv.Quote(key)"}, true
		case "int", "int8", "int16", "int32", "int64":
			return IndexFunc{Name: name, Path: path, ArgType: keyIdent.Name, Render: "strconv.FormatInt(int64(key), 10)"}, true
		case "uint", "uint8", "uint16", "uint32", "uint64":
			return IndexFunc{Name: name, Path: path, ArgType: keyIdent.Name, Render: "strconv.FormatUint(uint64(key), 10)"}, true
		}
	}
	return IndexFunc{}, false
}

// genTemplate is the Go source template used to generate the path file.
var genTemplate = template.Must(
	template.New("pathgen").Parse(`// Code generated by pathgen; DO NOT EDIT.

package {{.Package}}
{{if .IndexFuncs}}
import "strconv"
{{end}}
// Path expressions for {{.Type}}.
const (
{{- range .Consts}}
	{{.Name}} = {{printf "%q" .Path}}
{{- end}}
)
{{range .IndexFuncs}}
// {{.Name}} returns the path of one element of {{.Path}}.
func {{.Name}}(key {{.ArgType}}) string {
	return {{printf "%q" .Path}} + "[" + {{.Render}} + "]"
}
{{end}}`),
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes a file atomically.
//
// It writes to a temporary file in the same directory and then renames it
// over the target path, ensuring readers never observe partial writes.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	targetDir := filepath.Dir(targetPath)

	tmpFile, err := createTempFile(targetDir, filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	return renameFile(tmpPath, targetPath)
}
