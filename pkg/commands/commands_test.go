package commands

import (
	"strings"
	"testing"
)

func TestTabIndex(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "1", want: 0},
		{in: "10", want: 9},
		{in: "0", wantErr: true},
		{in: "-2", wantErr: true},
		{in: "two", wantErr: true},
	}
	for _, tc := range cases {
		got, err := tabIndex(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("tabIndex(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("tabIndex(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCommandTree(t *testing.T) {
	root := New()
	want := []string{
		"import", "list", "open", "close", "switch", "tabs", "progress", "cover",
		"preload", "outline", "remove", "clear", "settings", "watch", "info",
		"ui", "mcp", "version", "upgrade",
	}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestArgumentErrorsBeforeOpeningState(t *testing.T) {
	t.Setenv("FOLIO_CONFIG_PATH", t.TempDir())
	t.Setenv("FOLIO_PATH", t.TempDir())
	t.Setenv("FOLIO_STORAGE", "memory")
	cases := map[string][]string{
		"close needs a number":   {"close", "first"},
		"switch starts at one":   {"switch", "0"},
		"progress page from one": {"progress", "a.pdf", "0"},
		"clear needs yes":        {"clear"},
		"unknown output":         {"list", "-o", "xml"},
		"auto-restore on or off": {"settings", "auto-restore", "maybe"},
		"import needs something": {"import"},
		"open needs exactly one": {"open"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			root := New()
			root.SetArgs(args)
			root.SetOut(&strings.Builder{})
			root.SetErr(&strings.Builder{})
			if err := root.Execute(); err == nil {
				t.Fatalf("expected %v to fail", args)
			}
		})
	}
}
