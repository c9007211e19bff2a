// Package flagx helps several independent parsers share one command line:
// each parser keeps only the flags it owns and ignores the rest.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args made of allowed flags and their
// values, preserving order.
//
// Both "-k value" and "-k=value" forms are recognised. A token that follows
// an allowed flag is taken as its value unless it starts with '-'.
//
//	FilterArgs([]string{"-c", "lock.toml", "-x", "1"}, []string{"-c"})
//	// -> []string{"-c", "lock.toml"}
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFile extracts the config file path given with -c or -config.
// The last occurrence wins; an empty string means no file was requested.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file (.json or .toml)")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}

// Bool reports whether the boolean flag name (for example "-force") is set
// in args. Both "-force" and "-force=true" are accepted.
func Bool(args []string, name string) bool {
	var v bool

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.BoolVar(&v, strings.TrimLeft(name, "-"), false, "")
	_ = fs.Parse(FilterArgs(args, []string{name}))

	return v
}
