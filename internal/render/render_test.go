package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/chatpanel/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != StyleDark {
		t.Errorf("expected Style=%q, got %s", StyleDark, opts.Style)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.InlineTableLinks {
		t.Error("expected InlineTableLinks=false")
	}
}

func TestOptionsWith(t *testing.T) {
	base := DefaultOptions()
	opts := base.WithWidth(100).WithStyle(StyleLight)

	if opts.Width != 100 || opts.Style != StyleLight {
		t.Errorf("width/style not applied: %+v", opts)
	}
	if base.Width != 80 || base.Style != StyleDark {
		t.Errorf("receiver was modified: %+v", base)
	}
}

func TestMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		contains string
	}{
		{"heading", "# Hello World", 80, "Hello"},
		{"bold", "This is **bold** text", 80, "bold"},
		{"code_block", "```go\nfmt.Println(\"hello\")\n```", 80, "Println"},
		{"list", "- first\n- second", 80, "second"},
		{"narrow_width", "# Long heading that should wrap", 20, "Long"},
		{"zero_width", "plain reply", 0, "plain"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output, err := Markdown(tc.input, DefaultOptions().WithWidth(tc.width))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(output, tc.contains) {
				t.Errorf("output should contain %q, got: %s", tc.contains, output)
			}
		})
	}
}

func TestMarkdownEmoji(t *testing.T) {
	input := "Hello :smile: world"

	output, err := Markdown(input, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(output, ":smile:") {
		t.Errorf("emoji should have been converted, got: %s", output)
	}

	noEmoji := DefaultOptions()
	noEmoji.EnableEmoji = false
	output, err = Markdown(input, noEmoji)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, ":smile:") {
		t.Errorf("emoji should NOT have been converted, got: %s", output)
	}
}

func TestMarkdownUnknownStyleFallsBack(t *testing.T) {
	output, err := Markdown("# Test", DefaultOptions().WithStyle("nonexistent_style"))
	if err != nil {
		t.Fatalf("unknown style should fall back, got error: %v", err)
	}
	if !strings.Contains(output, "Test") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestReplyTrimsBlankLines(t *testing.T) {
	out := Reply("Hello! How can I help you today?", DefaultOptions().WithStyle(StyleNoTTY))

	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("Reply() kept surrounding newlines: %q", out)
	}
	if !strings.Contains(out, "How can I help") {
		t.Errorf("Reply() = %q", out)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv(EnvStyle, "")

	md := config.MarkdownConfig{
		Style:            StyleLight,
		EnableEmoji:      false,
		PreserveNewLines: true,
		TableWrap:        false,
		InlineTableLinks: true,
	}
	opts := OptionsFromConfig(md)

	if opts.Style != StyleLight {
		t.Errorf("Style = %q", opts.Style)
	}
	if opts.EnableEmoji || opts.TableWrap || !opts.PreserveNewLines || !opts.InlineTableLinks {
		t.Errorf("toggles not copied: %+v", opts)
	}
	if opts.Width != 80 {
		t.Errorf("Width = %d, want default", opts.Width)
	}

	empty := OptionsFromConfig(config.MarkdownConfig{})
	if empty.Style != StyleDark {
		t.Errorf("empty style should keep default, got %q", empty.Style)
	}
}

func TestOptionsFromConfigEnvOverride(t *testing.T) {
	t.Setenv(EnvStyle, StyleNoTTY)

	opts := OptionsFromConfig(config.DefaultMarkdownConfig())
	if opts.Style != StyleNoTTY {
		t.Errorf("Style = %q, want %q", opts.Style, StyleNoTTY)
	}
}

func TestStyles(t *testing.T) {
	for _, s := range AvailableStyles() {
		if !IsStandardStyle(s.Name) {
			t.Errorf("IsStandardStyle(%q) = false", s.Name)
		}
	}
	if IsStandardStyle("neon") {
		t.Error("IsStandardStyle(neon) = true")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "mine.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", StyleDark},
		{StyleDracula, StyleDracula},
		{"neon", StyleDark},
		{filepath.Join(dir, "missing.json"), StyleDark},
		{path, path},
	}
	for _, tt := range tests {
		if got := resolveStyle(tt.in); got != tt.want {
			t.Errorf("resolveStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaletteByName(t *testing.T) {
	for _, name := range PaletteNames() {
		p, ok := PaletteByName(name)
		if !ok || p.Name != name {
			t.Errorf("PaletteByName(%q) = %q, %v", name, p.Name, ok)
		}
		if p.Destructive == "" || p.User == "" || p.Assistant == "" {
			t.Errorf("palette %q has empty colors", name)
		}
	}

	p, ok := PaletteByName("solarized")
	if ok {
		t.Error("expected unknown palette to report false")
	}
	if p.Name != TokyoNight.Name {
		t.Errorf("fallback = %q, want %q", p.Name, TokyoNight.Name)
	}
}
