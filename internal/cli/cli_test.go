package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/config"
	"github.com/matzehuels/masonry/pkg/errors"
	pkgio "github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/layout"
)

const manifestJSON = `{"tiles": [
	{"id": "a", "width": 100, "height": 100},
	{"id": "b", "width": 100, "height": 50},
	{"id": "c", "width": 100, "height": 70}
]}`

// isolate points the config and cache directories at t's temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if stdin != "" {
		root.SetIn(strings.NewReader(stdin))
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	dir := isolate(t)
	in := writeTemp(t, dir, "tiles.json", manifestJSON)
	out := filepath.Join(dir, "out.json")

	if _, err := execute(t, "", "layout", in, "--column-width", "100", "--width", "250", "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	res, err := pkgio.ReadResult(f, pkgio.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if res.Columns != 2 || res.Height != 120 || res.Policy != layout.BestFit {
		t.Errorf("result = %d columns, height %v, %v", res.Columns, res.Height, res.Policy)
	}
}

func TestLayoutCommandDefaultOutput(t *testing.T) {
	dir := isolate(t)
	in := writeTemp(t, dir, "tiles.json", manifestJSON)
	if _, err := execute(t, "", "layout", in); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tiles.layout.json")); err != nil {
		t.Errorf("default output missing: %v", err)
	}
}

func TestLayoutCommandConfigAndYAML(t *testing.T) {
	dir := isolate(t)
	cfg := writeTemp(t, dir, "masonry.toml", "[gallery]\ncolumn_width = 100\nbest_fit = false\n")
	in := writeTemp(t, dir, "tiles.yaml", `
tiles:
  - {id: a, width: 100, height: 100}
  - {id: b, width: 100, height: 50}
  - {id: c, width: 100, height: 70}
`)
	out := filepath.Join(dir, "out.yaml")

	if _, err := execute(t, "", "--config", cfg, "layout", in, "--width", "250", "-o", out); err != nil {
		t.Fatalf("layout: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	res, err := pkgio.UnmarshalResult(data, pkgio.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	// sequential: c wraps back to column 0 under a
	if res.Policy != layout.Sequential || res.Placements[2].Column != 0 || res.Placements[2].Top != 100 {
		t.Errorf("result = %+v", res)
	}
}

func TestLayoutCommandStdin(t *testing.T) {
	dir := isolate(t)
	out := filepath.Join(dir, "out.json")
	if _, err := execute(t, manifestJSON, "layout", "-", "-o", out); err != nil {
		t.Fatalf("layout from stdin: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Error(err)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	dir := isolate(t)
	in := writeTemp(t, dir, "tiles.json", manifestJSON)
	badCfg := writeTemp(t, dir, "bad.toml", "[cache]\nbackend = \"tape\"\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing manifest", []string{"layout", filepath.Join(dir, "nope.json")}, errors.ErrCodeFileNotFound},
		{"bad policy", []string{"layout", in, "--policy", "random"}, errors.ErrCodeInvalidPolicy},
		{"negative padding", []string{"layout", in, "--padding", "-1"}, errors.ErrCodeInvalidConfiguration},
		{"bad config", []string{"--config", badCfg, "layout", in}, errors.ErrCodeInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if ExitCode(err) != 2 {
				t.Errorf("ExitCode = %d, want 2", ExitCode(err))
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	in := writeTemp(t, dir, "tiles.json", manifestJSON)
	base := filepath.Join(dir, "gallery.svg")

	_, err := execute(t, "", "render", in, "-f", "svg, txt", "-o", base, "--labels", "--width", "250", "--column-width", "100")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	svg, err := os.ReadFile(filepath.Join(dir, "gallery.svg"))
	if err != nil || !bytes.Contains(svg, []byte(`id="tile-c"`)) {
		t.Errorf("svg: %v\n%s", err, svg)
	}
	txt, err := os.ReadFile(filepath.Join(dir, "gallery.txt"))
	if err != nil || !bytes.Contains(txt, []byte("┌")) {
		t.Errorf("txt: %v\n%s", err, txt)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	dir := isolate(t)
	in := writeTemp(t, dir, "tiles.json", manifestJSON)
	_, err := execute(t, "", "render", in, "-f", "pdf")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	in := writeTemp(t, dir, "tiles.json", manifestJSON)

	out, err := execute(t, "", "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	cacheDir := filepath.Join(dir, "cache", appName)
	if strings.TrimSpace(out) != cacheDir {
		t.Errorf("cache path = %q, want %q", out, cacheDir)
	}

	if _, err := execute(t, "", "layout", in, "-o", filepath.Join(dir, "out.json")); err != nil {
		t.Fatal(err)
	}
	if n := countFiles(t, cacheDir); n == 0 {
		t.Fatal("layout wrote nothing to the cache")
	}
	if _, err := execute(t, "", "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if n := countFiles(t, cacheDir); n != 0 {
		t.Errorf("%d files left after clear", n)
	}
}

func TestCacheCommandsOtherBackend(t *testing.T) {
	dir := isolate(t)
	cfg := writeTemp(t, dir, "c.toml", "[cache]\nbackend = \"none\"\n")
	if _, err := execute(t, "", "--config", cfg, "cache", "path"); err == nil {
		t.Error("cache path should fail for the none backend")
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	_ = filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return nil
	})
	return n
}

func TestBuildOptionsPrecedence(t *testing.T) {
	dir := isolate(t)
	in := writeTemp(t, dir, "m.json", `{
		"tiles": [{"width": 10, "height": 10}],
		"column_width": 90,
		"box": {"padding": 2},
		"policy": "sequential"
	}`)

	c := New(io.Discard, LogInfo)
	c.Config.Gallery.ColumnWidth = 50
	c.Config.Box = layout.BoxModel{Margin: 7}

	cmd := &cobra.Command{}
	var f layoutFlags
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--policy", "bestfit", "--margin", "3"}); err != nil {
		t.Fatal(err)
	}

	opts, err := c.buildOptions(cmd, in, &f)
	if err != nil {
		t.Fatal(err)
	}
	if opts.ColumnWidth != 90 {
		t.Errorf("column width = %v, want manifest 90", opts.ColumnWidth)
	}
	if opts.Policy != "bestfit" {
		t.Errorf("policy = %q, want flag bestfit", opts.Policy)
	}
	// the manifest box replaces the config box; the flag patches it
	if opts.Box != (layout.BoxModel{Padding: 2, Margin: 3}) {
		t.Errorf("box = %+v", opts.Box)
	}
}

func TestNewCache(t *testing.T) {
	dir := isolate(t)
	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	if cc, err := c.newCache(ctx, true); err != nil {
		t.Fatal(err)
	} else if _, ok := cc.(cache.NullCache); !ok {
		t.Errorf("--no-cache gave %T", cc)
	}

	c.Config.Cache = config.Cache{Backend: config.BackendFile, Dir: filepath.Join(dir, "custom")}
	cc, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := cc.(*cache.FileCache); !ok || fc.Dir() != filepath.Join(dir, "custom") {
		t.Errorf("file backend gave %T", cc)
	}

	c.Config.Cache = config.Cache{Backend: config.BackendNone}
	if cc, _ := c.newCache(ctx, false); cc == nil {
		t.Error("none backend returned nil cache")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,png,txt", []string{"svg", "png", "txt"}},
		{"json, txt", []string{"json", "txt"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		formats []string
		want    map[string]string
	}{
		{"derived", "dir/tiles.json", "", []string{"svg"}, map[string]string{"svg": "dir/tiles.svg"}},
		{"explicit single", "tiles.json", "out.image", []string{"png"}, map[string]string{"png": "out.image"}},
		{"base with ext", "tiles.json", "out.svg", []string{"svg", "png"}, map[string]string{"svg": "out.svg", "png": "out.png"}},
		{"stdin", "-", "", []string{"txt"}, map[string]string{"txt": "masonry.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.input, tt.output, tt.formats)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v", got)
			}
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("%s: got %q, want %q", f, got[f], p)
				}
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(errors.New(errors.ErrCodeInternal, "boom")) != 1 {
		t.Error("internal errors exit 1")
	}
	if ExitCode(errors.New(errors.ErrCodeInvalidManifest, "bad")) != 2 {
		t.Error("invalid manifests exit 2")
	}
}

func TestStatsLine(t *testing.T) {
	res := layout.Result{Columns: 3, Policy: layout.Sequential, Width: 300, Height: 120}
	line := statsLine(5, res, true)
	for _, want := range []string{"5 tiles", "3 columns", "sequential", "300×120", "cached"} {
		if !strings.Contains(line, want) {
			t.Errorf("stats line %q missing %q", line, want)
		}
	}
}
