package main

import (
	"os"
	"strconv"
	"strings"

	"ttd-cli/internal/cli"
	"ttd-cli/internal/nav"
)

// routeCommand maps a pasted route path onto the command that shows it.
func routeCommand(s string) []string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "/") {
		return nil
	}
	loc, err := nav.Parse(s)
	if err != nil {
		return nil
	}
	switch loc.Route {
	case nav.RouteDocument:
		return []string{"docs", "show", strconv.Itoa(loc.ID)}
	case nav.RouteDisposition:
		return []string{"dispositions", "show", strconv.Itoa(loc.ID)}
	case nav.RouteDocuments:
		return []string{"docs", "list"}
	case nav.RouteDispositions:
		return []string{"dispositions", "list"}
	case nav.RouteProfile:
		return []string{"whoami"}
	}
	return nil
}

func rewriteRouteArgs(argv []string) []string {
	// Convenience: `ttd /document/12` works like `ttd docs show 12`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is
	// rewritten before parsing. Persistent flags may come first, so look for
	// the first positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--base-url":  true,
		"--format":    true,
		"--log-file":  true,
		"--log-level": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		repl := routeCommand(a)
		if repl == nil {
			return argv
		}
		out := make([]string, 0, len(argv)+len(repl))
		out = append(out, argv[:i]...)
		out = append(out, repl...)
		out = append(out, argv[i+1:]...)
		return out
	}

	return argv
}

func main() {
	os.Args = rewriteRouteArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
