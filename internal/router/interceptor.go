package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/veeru594/ai-agent/internal/toolcall"
	"github.com/veeru594/ai-agent/internal/tools"
)

// DefaultMaxToolDepth bounds how many times a reply may trigger a resubmission.
const DefaultMaxToolDepth = 2

// Reader fetches a resource for the model. Implemented by *tools.Filesystem.
type Reader interface {
	ReadFile(path string) (string, error)
}

// Terminal states of the interception loop.
const (
	StateDone          = "done"
	StateDepthExceeded = "depth_exceeded"
)

// Failure states reported when Route returns an error.
const (
	StateExhausted = "exhausted"
	StateError     = "error"
)

// ToolRead records one intercepted read_file request.
type ToolRead struct {
	Path      string `json:"path"`
	Depth     int    `json:"depth"`
	Error     string `json:"error,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

// resubmitFunc sends a continuation prompt back through the named chain.
type resubmitFunc func(ctx context.Context, chain, prompt string) (Completion, error)

// interceptor runs the bounded read_file loop on top of a first completion.
type interceptor struct {
	reader   Reader
	maxDepth int
	logger   *zap.Logger
	metrics  Metrics
}

type loopResult struct {
	Completion Completion
	Attempts   []Attempt
	Reads      []ToolRead
	Depth      int
	State      string
}

// run inspects each reply for a read_file request. Every request, fetched or
// not, adds one context addendum and costs one unit of depth.
func (i *interceptor) run(ctx context.Context, basePrompt string, first Completion, resubmit resubmitFunc) (loopResult, error) {
	res := loopResult{Completion: first, Attempts: append([]Attempt(nil), first.Attempts...)}
	var addenda []string

	for depth := 0; ; depth++ {
		req, ok := toolcall.Parse(res.Completion.Text).(toolcall.ReadFileRequest)
		if !ok {
			res.Depth = depth
			res.State = StateDone
			return res, nil
		}
		if depth >= i.maxDepth {
			i.logger.Warn("tool call depth exceeded, returning last reply",
				zap.Int("depth", depth),
				zap.String("path", req.Path),
			)
			res.Depth = depth
			res.State = StateDepthExceeded
			return res, nil
		}

		read := ToolRead{Path: req.Path, Depth: depth}
		addendum := i.fetch(req.Path, &read)
		res.Reads = append(res.Reads, read)
		addenda = append(addenda, addendum)

		next, err := resubmit(ctx, res.Completion.Chain, continuation(basePrompt, addenda))
		res.Attempts = append(res.Attempts, next.Attempts...)
		if err != nil {
			return res, err
		}
		res.Completion = next
	}
}

func (i *interceptor) fetch(path string, read *ToolRead) string {
	if i.reader == nil {
		read.Error = "file access is not configured"
		i.recordRead("unavailable")
		return toolErrorSection(path, read.Error)
	}

	content, err := i.reader.ReadFile(path)
	if err != nil {
		read.Error = err.Error()
		i.logger.Warn("read_file failed", zap.String("path", path), zap.Error(err))
		i.recordRead(readFailureReason(err))
		return toolErrorSection(path, read.Error)
	}

	read.Truncated = strings.HasSuffix(content, tools.TruncationMarker)
	i.logger.Info("read_file served", zap.String("path", path), zap.Int("bytes", len(content)))
	i.recordRead("ok")
	return fileSection(path, content)
}

func (i *interceptor) recordRead(result string) {
	if i.metrics != nil {
		i.metrics.RecordToolRead(result)
	}
}

func readFailureReason(err error) string {
	switch {
	case errors.Is(err, tools.ErrNotFound):
		return "not_found"
	case errors.Is(err, tools.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, tools.ErrNoProject):
		return "no_project"
	default:
		return "error"
	}
}

func fileSection(path, content string) string {
	return fmt.Sprintf("You requested the following file:\n\nFILE: %s\n%s\n%s\n%s\n\nContinue your task using this file as the source of truth.",
		path, sectionRule, content, sectionRule)
}

func toolErrorSection(path, reason string) string {
	return fmt.Sprintf("TOOL ERROR: failed to read file %q. Reason: %s\nProceed without this file or request a different one.",
		path, reason)
}

const sectionRule = "------------------"

// continuation rebuilds the prompt from the base plus every addendum so far.
func continuation(base string, addenda []string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, a := range addenda {
		b.WriteString("\n\n")
		b.WriteString(a)
	}
	return b.String()
}
