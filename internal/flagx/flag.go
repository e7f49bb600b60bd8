// Package flagx lets independent config loaders each pick their own flags out
// of os.Args without tripping over flags owned by someone else.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs keeps only the flags listed in allowedFlags, together with their
// values. Both "-c conf.json" and "-c=conf.json" forms are recognised; a
// following token that starts with "-" is never taken as a value.
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

// StringFlag returns the value of the last occurrence of any of names
// (given without the leading dash) in args. Missing flags yield "".
func StringFlag(args []string, names ...string) string {
	dashed := make([]string, 0, len(names))
	for _, n := range names {
		dashed = append(dashed, "-"+n)
	}

	var value string
	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(args, dashed))

	return value
}

// ConfigFileFlag returns the JSON config path given via -c or -config.
func ConfigFileFlag() string {
	return StringFlag(os.Args[1:], "c", "config")
}

// EnvFileFlag returns the dotenv file path given via -e or -env.
func EnvFileFlag() string {
	return StringFlag(os.Args[1:], "e", "env")
}
