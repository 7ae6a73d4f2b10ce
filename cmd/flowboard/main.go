package main

import (
	"os"
	"strings"

	"flowboard-cli/internal/cli"
)

// firstPositionalIndex finds the first argv token cobra would treat as a
// subcommand, skipping the root command's persistent flags: --dir takes a
// value, --pretty does not. Unknown flags are skipped too and left for cobra
// to reject. Returns -1 when every token is a flag.
func firstPositionalIndex(argv []string) int {
	skipValue := false
	for i := 1; i < len(argv); i++ {
		a := argv[i]
		switch {
		case skipValue:
			skipValue = false
		case a == "--":
			if i+1 < len(argv) {
				return i + 1
			}
			return -1
		case a == "--dir":
			skipValue = true
		case strings.HasPrefix(a, "-"):
			// --pretty, --dir=..., or something cobra will complain about.
		default:
			return i
		}
	}
	return -1
}

// expandTaskIDShorthand lets `flowboard task-xxxxx` stand in for
// `flowboard task show task-xxxxx`. Only a leading positional carrying the
// generated id prefix is expanded; real subcommands pass through untouched.
func expandTaskIDShorthand(argv []string) []string {
	i := firstPositionalIndex(argv)
	if i < 0 {
		return argv
	}
	id := strings.TrimSpace(argv[i])
	if id == "task-" || !strings.HasPrefix(id, "task-") {
		return argv
	}
	out := make([]string, 0, len(argv)+2)
	out = append(out, argv[:i]...)
	out = append(out, "task", "show")
	return append(out, argv[i:]...)
}

func main() {
	os.Args = expandTaskIDShorthand(os.Args)
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
