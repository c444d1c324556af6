package request

import (
	"maps"
	"slices"
)

// FromTemplate builds a request from a pre-built parameter object instead of
// positional arguments.
//
// A non-empty string "command" field in tpl wins over defaultCmd. Every
// other field is layered on with Apply, in sorted key order, so the same
// type rules and silent drops apply as for dynamic input. tpl is not
// modified.
//
//	req := FromTemplate(CmdSearch, Object{"query": "hello", "docs": 10})
func FromTemplate(defaultCmd Command, tpl Object) *Request {
	r := New(templateCommand(defaultCmd, tpl))
	for _, name := range slices.Sorted(maps.Keys(tpl)) {
		if name == FieldCommand {
			continue
		}
		r.Apply(name, tpl[name])
	}
	return r
}

func templateCommand(defaultCmd Command, tpl Object) Command {
	switch c := tpl[FieldCommand].(type) {
	case string:
		if c != "" {
			return Command(c)
		}
	case Command:
		if c != "" {
			return c
		}
	}
	return defaultCmd
}
