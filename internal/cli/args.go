// ABOUTME: Parses the slash-style command line: /l, /h, /input:<index|name>, /output:<index|name>.
// ABOUTME: Flag names are case-insensitive; values keep their case.

package cli

import (
	"strconv"
	"strings"
)

// Target selects an endpoint by 0-based index or by name.
type Target struct {
	Raw     string
	Index   int
	IsIndex bool
}

// ParseTarget treats an integer value as an index and anything else as a name.
func ParseTarget(v string) Target {
	v = strings.TrimSpace(v)
	if i, err := strconv.Atoi(v); err == nil {
		return Target{Raw: v, Index: i, IsIndex: true}
	}
	return Target{Raw: v}
}

func (t Target) String() string {
	if t.IsIndex {
		return strconv.Itoa(t.Index)
	}
	return strconv.Quote(t.Raw)
}

// Options is the parsed command line.
type Options struct {
	List    bool
	Input   *Target
	Output  *Target
	Test    bool
	Sound   string // file for /test:<file>, "" = built-in chime
	Notify  bool
	Verbose bool

	Unknown []string
}

// Mutates reports whether the options ask to change a default endpoint.
func (o Options) Mutates() bool {
	return !o.List && (o.Input != nil || o.Output != nil)
}

// Parse reads args (without the program name) in a single pass.
// The first /input: and /output: win; listing takes precedence over changes.
func Parse(args []string) Options {
	var o Options
	if len(args) == 0 {
		o.List = true
		return o
	}

	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case lower == "/l" || lower == "/h" || lower == "/?" || lower == "-h" || lower == "--help":
			o.List = true
		case strings.HasPrefix(lower, "/input:"):
			if o.Input == nil {
				t := ParseTarget(arg[len("/input:"):])
				o.Input = &t
			}
		case strings.HasPrefix(lower, "/output:"):
			if o.Output == nil {
				t := ParseTarget(arg[len("/output:"):])
				o.Output = &t
			}
		case lower == "/test":
			o.Test = true
		case strings.HasPrefix(lower, "/test:"):
			o.Test = true
			o.Sound = arg[len("/test:"):]
		case lower == "/notify":
			o.Notify = true
		case lower == "/v":
			o.Verbose = true
		default:
			o.Unknown = append(o.Unknown, arg)
		}
	}

	if o.Input == nil && o.Output == nil && !o.Test {
		o.List = true
	}
	return o
}
