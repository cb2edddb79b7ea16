package engine

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// DuplicateStrictness controls duplicate key handling in Scan.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// ScanOptions controls the token-level checks applied before a document is
// decoded into an instance tree.
type ScanOptions struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth rejects documents nested deeper than this; zero disables.
	MaxDepth int
	// MaxIssues < 0 means unlimited; 0 disables reporting; >0 sets a limit.
	MaxIssues int
}

// SimpleIssue is a minimal issue representation produced by the scanner.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.Path + ": " + e.Message }

// ErrIssueLimit is returned in place of further issues when MaxIssues is hit.
var ErrIssueLimit = errors.New("engine: max issues reached")

type frameKind int

const (
	frameObject frameKind = iota
	frameArray
)

type scanFrame struct {
	kind         frameKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	pendingKey   string
	nextIndex    int
}

// ScanBytes walks a JSON document token by token, reporting duplicate keys
// (JSON decoders silently keep the last one) and depth overflows. Fatal
// findings (DupError duplicates, depth) are returned as IssueError.
//
// DupWarn duplicates are collected and returned with a nil error. A duplicate
// beyond MaxIssues stops the scan with ErrIssueLimit.
func ScanBytes(data []byte, opt ScanOptions) ([]SimpleIssue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	s := &scanner{opt: opt}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if len(s.stack) > 0 {
				return s.issues, io.ErrUnexpectedEOF
			}
			return s.issues, nil
		}
		if err != nil {
			return s.issues, err
		}
		if err := s.step(tok); err != nil {
			return s.issues, err
		}
	}
}

type scanner struct {
	opt    ScanOptions
	stack  []scanFrame
	issues []SimpleIssue
}

func (s *scanner) report(si SimpleIssue) error {
	if s.opt.MaxIssues == 0 {
		return nil
	}
	if s.opt.MaxIssues > 0 && len(s.issues) >= s.opt.MaxIssues {
		return ErrIssueLimit
	}
	s.issues = append(s.issues, si)
	return nil
}

func (s *scanner) step(tok json.Token) error {
	if d, ok := tok.(json.Delim); ok {
		switch d {
		case '{', '[':
			path := s.valuePath()
			kind := frameArray
			if d == '{' {
				kind = frameObject
			}
			s.stack = append(s.stack, scanFrame{kind: kind, keys: map[string]struct{}{}, expectingKey: kind == frameObject, path: path})
			if s.opt.MaxDepth > 0 && len(s.stack) > s.opt.MaxDepth {
				return IssueError{SimpleIssue{Code: "depth_exceeded", Path: normalizePath(path), Message: "max depth exceeded"}}
			}
		case '}', ']':
			if n := len(s.stack); n > 0 {
				s.stack = s.stack[:n-1]
			}
			s.valueDone()
		}
		return nil
	}
	if key, ok := tok.(string); ok && len(s.stack) > 0 {
		top := &s.stack[len(s.stack)-1]
		if top.kind == frameObject && top.expectingKey {
			if _, dup := top.keys[key]; dup && s.opt.OnDuplicate != DupIgnore {
				si := SimpleIssue{Code: "duplicate_key", Path: normalizePath(joinPointer(top.path, key)), Message: "key '" + key + "' duplicated"}
				if s.opt.OnDuplicate == DupError {
					return IssueError{si}
				}
				if err := s.report(si); err != nil {
					return err
				}
			}
			top.keys[key] = struct{}{}
			top.expectingKey = false
			top.pendingKey = key
			return nil
		}
	}
	s.valuePath()
	s.valueDone()
	return nil
}

// valuePath returns the pointer of the value about to be read and advances
// array indices.
func (s *scanner) valuePath() string {
	if len(s.stack) == 0 {
		return ""
	}
	top := &s.stack[len(s.stack)-1]
	if top.kind == frameArray {
		p := joinPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	return joinPointer(top.path, top.pendingKey)
}

// valueDone flips the enclosing object back to expecting a key.
func (s *scanner) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == frameObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
