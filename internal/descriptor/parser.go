// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"stratum-cli/pkg/types"

	"mvdan.cc/sh/v3/syntax"
)

// maxDescriptorSize bounds descriptor input to prevent pathological files
// from exhausting memory. Real descriptors are a few kilobytes.
const maxDescriptorSize = 1 << 20

// ParseFile parses the descriptor at path. Files over maxDescriptorSize are
// rejected outright rather than parsed from a truncated prefix.
func ParseFile(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Msg: "cannot open descriptor", Err: err}
	}
	defer f.Close() //nolint:errcheck // read-only file

	info, err := f.Stat()
	if err != nil {
		return nil, &ParseError{Path: path, Msg: "cannot stat descriptor", Err: err}
	}
	if info.Size() > maxDescriptorSize {
		return nil, &ParseError{
			Path: path,
			Msg:  fmt.Sprintf("descriptor is too large (%d bytes, limit %d)", info.Size(), maxDescriptorSize),
		}
	}

	d, err := Parse(f)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	d.Path = path
	return d, nil
}

// Parse parses a descriptor from r. Directives are recognized one per logical
// line; a trailing backslash continues the directive on the next physical
// line, and lines whose first non-blank character is '#' are comments even
// inside a continuation.
func Parse(r io.Reader) (*Descriptor, error) {
	lines, err := logicalLines(r)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{}
	sawFrom := false

	for _, ln := range lines {
		if strings.HasPrefix(ln.text, "#") {
			d.Steps = append(d.Steps, Step{
				Kind: StepComment,
				Text: strings.TrimSpace(strings.TrimPrefix(ln.text, "#")),
				Line: ln.num,
			})
			continue
		}

		keyword, payload := splitDirective(ln.text)
		switch keyword {
		case "FROM":
			if sawFrom {
				return nil, &ParseError{Line: ln.num, Msg: "multiple FROM directives; only a single base image is supported"}
			}
			if len(d.Steps) > 0 && len(d.EffectfulSteps()) > 0 {
				return nil, &ParseError{Line: ln.num, Msg: "FROM must precede all other directives"}
			}
			ref := types.ImageRef(payload)
			if err := ref.Validate(); err != nil {
				return nil, &ParseError{Line: ln.num, Msg: "bad FROM payload", Err: err}
			}
			d.BaseImage = ref
			sawFrom = true

		case "USER":
			principal := types.Principal(payload)
			if err := principal.Validate(); err != nil {
				return nil, &ParseError{Line: ln.num, Msg: "bad USER payload", Err: err}
			}
			d.Steps = append(d.Steps, Step{Kind: StepSetUser, User: principal, Line: ln.num})

		case "RUN":
			if strings.TrimSpace(payload) == "" {
				return nil, &ParseError{Line: ln.num, Msg: "RUN requires a command"}
			}
			subs, err := splitCompound(payload)
			if err != nil {
				return nil, &ParseError{Line: ln.num, Msg: "RUN command has invalid shell syntax", Err: err}
			}
			d.Steps = append(d.Steps, Step{
				Kind:        StepRun,
				Command:     payload,
				SubCommands: subs,
				Line:        ln.num,
			})

		case "":
			// logicalLines never yields blank lines.
			continue

		default:
			return nil, &ParseError{Line: ln.num, Msg: fmt.Sprintf("unknown directive %q", keyword)}
		}
	}

	if !sawFrom {
		return nil, &ParseError{Msg: "descriptor has no FROM directive"}
	}

	return d, nil
}

type logicalLine struct {
	text string
	num  int // physical line where the logical line starts
}

// logicalLines reads physical lines and joins backslash continuations.
// Blank lines are dropped. Comment lines interrupt a continuation without
// terminating it, matching the descriptor format's behavior.
func logicalLines(r io.Reader) ([]logicalLine, error) {
	var (
		out     []logicalLine
		pending strings.Builder
		start   int
		num     int
	)

	flush := func() {
		text := strings.TrimSpace(pending.String())
		pending.Reset()
		if text != "" {
			out = append(out, logicalLine{text: text, num: start})
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxDescriptorSize)
	continuing := false

	for scanner.Scan() {
		num++
		raw := strings.TrimRight(scanner.Text(), " \t")
		trimmed := strings.TrimSpace(raw)

		if strings.HasPrefix(trimmed, "#") {
			// Comments interrupt a continuation without terminating it, and
			// are emitted in source position so declaration order holds.
			out = append(out, logicalLine{text: trimmed, num: num})
			continue
		}

		if trimmed == "" {
			if !continuing {
				continue
			}
			// A blank line ends a dangling continuation.
			continuing = false
			flush()
			continue
		}

		if !continuing {
			start = num
		}

		if strings.HasSuffix(trimmed, "\\") {
			pending.WriteString(strings.TrimSuffix(trimmed, "\\"))
			pending.WriteString(" ")
			continuing = true
			continue
		}

		pending.WriteString(trimmed)
		continuing = false
		flush()
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: num, Msg: "cannot read descriptor", Err: err}
	}
	if continuing {
		flush()
	}

	return out, nil
}

// splitDirective separates the directive keyword from its payload. Keywords
// are case-insensitive in the input and normalized to upper case.
func splitDirective(line string) (keyword, payload string) {
	fields := strings.SplitN(line, " ", 2)
	keyword = strings.ToUpper(strings.TrimSpace(fields[0]))
	if len(fields) == 2 {
		payload = strings.TrimSpace(fields[1])
	}
	return keyword, payload
}

// splitCompound validates command as shell syntax and returns its top-level
// && chain as ordered sub-commands. Statements joined by ';' or newlines are
// separate sub-commands too; ||, pipes, and redirections stay inside their
// sub-command untouched.
func splitCompound(command string) ([]string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "run")
	if err != nil {
		return nil, err
	}

	var stmts []*syntax.Stmt
	for _, stmt := range file.Stmts {
		flattenAndChain(stmt, &stmts)
	}

	printer := syntax.NewPrinter()
	subs := make([]string, 0, len(stmts))
	for _, stmt := range stmts {
		var buf bytes.Buffer
		if err := printer.Print(&buf, stmt); err != nil {
			return nil, err
		}
		subs = append(subs, strings.TrimSpace(buf.String()))
	}
	return subs, nil
}

// flattenAndChain appends stmt's top-level && chain to out in execution
// order. Negated statements and statements with redirections are kept whole:
// splitting them would change semantics.
func flattenAndChain(stmt *syntax.Stmt, out *[]*syntax.Stmt) {
	if bin, ok := stmt.Cmd.(*syntax.BinaryCmd); ok &&
		bin.Op == syntax.AndStmt && !stmt.Negated && len(stmt.Redirs) == 0 {
		flattenAndChain(bin.X, out)
		flattenAndChain(bin.Y, out)
		return
	}
	*out = append(*out, stmt)
}
