package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/datascribe/datascribe-cli/internal/dataset"
)

func TestReportRequiresAPIKey(t *testing.T) {
	prev := repAPIKey
	repAPIKey = ""
	defer func() { repAPIKey = prev }()

	err := reportCmd.RunE(reportCmd, []string{"data.csv"})
	if err == nil || !strings.Contains(err.Error(), "api key is required") {
		t.Fatalf("err = %v, want api key error", err)
	}
}

func TestReportRejectsUnsupportedExtension(t *testing.T) {
	prev := repAPIKey
	repAPIKey = "test-key"
	defer func() { repAPIKey = prev }()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("free text"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := reportCmd.RunE(reportCmd, []string{path})
	var unsupported *dataset.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want *dataset.UnsupportedFormatError", err)
	}
	if unsupported.Ext != ".txt" {
		t.Fatalf("ext = %q", unsupported.Ext)
	}
}

func TestReportRejectsMissingFile(t *testing.T) {
	prev := repAPIKey
	repAPIKey = "test-key"
	defer func() { repAPIKey = prev }()

	err := reportCmd.RunE(reportCmd, []string{filepath.Join(t.TempDir(), "absent.csv")})
	if err == nil {
		t.Fatalf("expected error for missing input file")
	}
}

func TestMask(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"abc", "******"},
		{"abcdef", "******"},
		{"supersecretkey", "sup****key"},
	}
	for _, tc := range cases {
		if got := mask(tc.in); got != tc.want {
			t.Errorf("mask(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
