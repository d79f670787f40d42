// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// odbcDescriptor is the canonical provisioning sequence: extend a telephony
// base image with ODBC drivers as root, then restore the runtime user.
const odbcDescriptor = `FROM andrius/asterisk:latest

USER root

RUN apt-get update && \
    apt-get install -y unixodbc odbc-mariadb && \
    rm -rf /var/lib/apt/lists/*

# restore the runtime user if provided by the image
USER asterisk
`

func TestParseProvisioningSequence(t *testing.T) {
	t.Parallel()

	d, err := Parse(strings.NewReader(odbcDescriptor))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if d.BaseImage != "andrius/asterisk:latest" {
		t.Errorf("BaseImage = %q, want %q", d.BaseImage, "andrius/asterisk:latest")
	}

	if len(d.Steps) != 4 {
		t.Fatalf("len(Steps) = %d, want 4", len(d.Steps))
	}

	if d.Steps[0].Kind != StepSetUser || d.Steps[0].User != "root" {
		t.Errorf("Steps[0] = %+v, want USER root", d.Steps[0])
	}

	run := d.Steps[1]
	if run.Kind != StepRun {
		t.Fatalf("Steps[1].Kind = %q, want %q", run.Kind, StepRun)
	}
	if len(run.SubCommands) != 3 {
		t.Fatalf("len(SubCommands) = %d, want 3: %v", len(run.SubCommands), run.SubCommands)
	}
	wantSubs := []string{
		"apt-get update",
		"apt-get install -y unixodbc odbc-mariadb",
		"rm -rf /var/lib/apt/lists/*",
	}
	for i, want := range wantSubs {
		if run.SubCommands[i] != want {
			t.Errorf("SubCommands[%d] = %q, want %q", i, run.SubCommands[i], want)
		}
	}

	if d.Steps[2].Kind != StepComment {
		t.Errorf("Steps[2].Kind = %q, want %q", d.Steps[2].Kind, StepComment)
	}

	if d.Steps[3].Kind != StepSetUser || d.Steps[3].User != "asterisk" {
		t.Errorf("Steps[3] = %+v, want USER asterisk", d.Steps[3])
	}

	if got := d.FinalUser(); got != "asterisk" {
		t.Errorf("FinalUser() = %q, want %q", got, "asterisk")
	}
	if got := len(d.EffectfulSteps()); got != 3 {
		t.Errorf("len(EffectfulSteps()) = %d, want 3", got)
	}
}

func TestParseContinuationJoinsLines(t *testing.T) {
	t.Parallel()

	d, err := Parse(strings.NewReader("FROM alpine:3.20\nRUN echo a \\\n  b \\\n  c\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(d.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want 1", len(d.Steps))
	}
	if got := d.Steps[0].Command; got != "echo a b c" {
		t.Errorf("Command = %q, want %q", got, "echo a b c")
	}
	if d.Steps[0].Line != 2 {
		t.Errorf("Line = %d, want 2", d.Steps[0].Line)
	}
}

func TestParseKeywordsAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	d, err := Parse(strings.NewReader("from alpine:3.20\nuser root\nrun true\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.BaseImage != "alpine:3.20" {
		t.Errorf("BaseImage = %q, want alpine:3.20", d.BaseImage)
	}
	if d.Steps[0].Kind != StepSetUser || d.Steps[1].Kind != StepRun {
		t.Errorf("unexpected steps: %+v", d.Steps)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "missing FROM", input: "USER root\n"},
		{name: "directive before FROM", input: "USER root\nFROM alpine\n"},
		{name: "double FROM", input: "FROM alpine\nFROM debian\n"},
		{name: "unknown directive", input: "FROM alpine\nCOPY a b\n"},
		{name: "empty RUN", input: "FROM alpine\nRUN\n"},
		{name: "empty USER", input: "FROM alpine\nUSER\n"},
		{name: "bad FROM ref", input: "FROM alpine:\n"},
		{name: "bad shell syntax", input: "FROM alpine\nRUN echo 'unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("error is not a *ParseError: %v", err)
			}
		})
	}
}

func TestParseCommentsBeforeFrom(t *testing.T) {
	t.Parallel()

	d, err := Parse(strings.NewReader("# header comment\nFROM alpine:3.20\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(d.Steps) != 1 || d.Steps[0].Kind != StepComment {
		t.Errorf("Steps = %+v, want a single comment", d.Steps)
	}
	if d.Steps[0].Text != "header comment" {
		t.Errorf("comment Text = %q, want %q", d.Steps[0].Text, "header comment")
	}
}

func TestSplitCompoundKeepsNonAndChainsWhole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{
			name:    "simple command",
			command: "apt-get update",
			want:    []string{"apt-get update"},
		},
		{
			name:    "or chain stays whole",
			command: "grep -q x /etc/f || true",
			want:    []string{"grep -q x /etc/f || true"},
		},
		{
			name:    "pipe stays whole",
			command: "cat /etc/passwd | wc -l",
			want:    []string{"cat /etc/passwd | wc -l"},
		},
		{
			name:    "and of pipe splits at and only",
			command: "apt-get update && apt-get install -y x | tee log",
			want:    []string{"apt-get update", "apt-get install -y x | tee log"},
		},
		{
			name:    "semicolons split",
			command: "true; false",
			want:    []string{"true", "false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := splitCompound(tt.command)
			if err != nil {
				t.Fatalf("splitCompound(%q) error = %v", tt.command, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("splitCompound(%q) = %v, want %v", tt.command, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sub[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseFileRejectsOversizedDescriptor(t *testing.T) {
	t.Parallel()

	// A directive past the size limit must surface as an error, not vanish
	// from a silently truncated parse.
	var sb strings.Builder
	sb.WriteString("FROM alpine:3.20\n")
	line := "RUN true\n"
	for sb.Len() <= 1<<20 {
		sb.WriteString(line)
	}
	sb.WriteString("BOGUS directive\n")

	path := filepath.Join(t.TempDir(), "Stratumfile")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := ParseFile(path)
	if err == nil {
		t.Fatal("ParseFile() succeeded on oversized descriptor, want error")
	}
	if !errors.Is(err, ErrParse) {
		t.Errorf("error does not wrap ErrParse: %v", err)
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("error does not report the size problem: %v", err)
	}
}

func TestParseFileSetsPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "Dockerfile")
	if err := os.WriteFile(path, []byte(odbcDescriptor), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if d.Path != path {
		t.Errorf("Path = %q, want %q", d.Path, path)
	}

	_, err = ParseFile(filepath.Join(dir, "missing"))
	if err == nil {
		t.Fatal("ParseFile(missing) succeeded, want error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error is not a *ParseError: %v", err)
	}
	if perr.Path == "" {
		t.Error("ParseError.Path is empty for missing file")
	}
}
