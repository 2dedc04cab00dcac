// Package toolcall recognises structured tool requests embedded in model
// replies. Only {"tool": "read_file", "path": "..."} is understood; anything
// else, including malformed objects, is treated as ordinary text.
package toolcall

import (
	"encoding/json"
	"strings"
)

// ToolReadFile is the only tool the router executes.
const ToolReadFile = "read_file"

const marker = `"tool"`

// Reply is either PlainReply or ReadFileRequest.
type Reply interface {
	isReply()
}

// PlainReply is a reply without a usable tool call.
type PlainReply struct {
	Text string
}

// ReadFileRequest asks the router to fetch Path and resubmit.
type ReadFileRequest struct {
	Path string
	// Raw is the JSON object the request was parsed from.
	Raw string
}

func (PlainReply) isReply()      {}
func (ReadFileRequest) isReply() {}

type wireCall struct {
	Tool string `json:"tool"`
	Path string `json:"path"`
}

// MaxRequestSize bounds the enclosing object considered for a tool call.
// Larger candidates are treated as plain text.
const MaxRequestSize = 8 << 10

// Parse classifies a reply. For every occurrence of the "tool" key the
// smallest JSON object enclosing it is decoded; the first one that is a
// well-formed read_file request wins. The reply is scanned once.
func Parse(text string) Reply {
	sc := scan(text)
	checked := make(map[int]bool, len(sc.markers))
	for _, m := range sc.markers {
		open := sc.nearestClosed(m)
		if open < 0 || checked[open] {
			continue
		}
		checked[open] = true

		obj := text[open:sc.closeOf[open]]
		if len(obj) > MaxRequestSize || !json.Valid([]byte(obj)) {
			continue
		}
		if req, ok := decode(obj); ok {
			return req
		}
	}
	return PlainReply{Text: text}
}

func decode(obj string) (ReadFileRequest, bool) {
	dec := json.NewDecoder(strings.NewReader(obj))
	var call wireCall
	if err := dec.Decode(&call); err != nil {
		return ReadFileRequest{}, false
	}
	if call.Tool != ToolReadFile {
		return ReadFileRequest{}, false
	}
	path := strings.TrimSpace(call.Path)
	if path == "" {
		return ReadFileRequest{}, false
	}
	return ReadFileRequest{Path: path, Raw: obj}, true
}

// braces is the result of one pass over a reply.
type braces struct {
	// closeOf maps the index of each '{' to the index just past its matching
	// '}', or -1 when it is never closed.
	closeOf map[int]int
	// parent maps each '{' to the '{' it is nested in, or -1.
	parent map[int]int
	// markers holds the innermost open brace of every "tool" key.
	markers []int
	nearest map[int]int
}

// scan pairs braces with a stack. Quotes start JSON strings only inside an
// open brace, and braces inside strings are ignored.
func scan(text string) *braces {
	b := &braces{closeOf: map[int]int{}, parent: map[int]int{}, nearest: map[int]int{}}
	var stack []int
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if len(stack) == 0 {
				continue
			}
			if strings.HasPrefix(text[i:], marker) {
				b.markers = append(b.markers, stack[len(stack)-1])
			}
			inString = true
		case '{':
			parent := -1
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			b.parent[i] = parent
			b.closeOf[i] = -1
			stack = append(stack, i)
		case '}':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			b.closeOf[open] = i + 1
		}
	}
	return b
}

// nearestClosed returns the innermost balanced brace at or above open, or -1.
// Results are memoised so chains of unclosed braces are walked once.
func (b *braces) nearestClosed(open int) int {
	var path []int
	res := -1
	for cur := open; cur >= 0; cur = b.parent[cur] {
		if v, ok := b.nearest[cur]; ok {
			res = v
			break
		}
		path = append(path, cur)
		if b.closeOf[cur] >= 0 {
			res = cur
			break
		}
	}
	for _, p := range path {
		b.nearest[p] = res
	}
	return res
}
