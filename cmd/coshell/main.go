// Command coshell starts the interactive shell with the default stack:
// posix-ish language, syntax highlighting, history-prefix suggestions,
// file-backed history under the config dir, and the command-timer plugin.
package main

import (
	"fmt"
	"os"

	"github.com/coshell/coshell/internal/plugin/commandtimer"
	"github.com/coshell/coshell/internal/shell"
)

func main() {
	sh, err := shell.New(
		shell.WithPlugin(commandtimer.New()),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coshell: %v\n", err)
		os.Exit(1)
	}
	if err := sh.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "coshell: %v\n", err)
		os.Exit(1)
	}
	os.Exit(sh.ExitCode())
}
