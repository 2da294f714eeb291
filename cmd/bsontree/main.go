// Command bsontree inspects and edits BSON files through the document
// tree: dump a file as extended JSON, read one element by path, set a
// leaf value (reporting the byte patches when the update qualifies for
// in-place application), or remove an element.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bsontree:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:           "bsontree",
		Short:         "inspect and edit BSON files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	cmd.AddCommand(
		newDumpCommand(&flags),
		newGetCommand(&flags),
		newSetCommand(&flags),
		newRemoveCommand(&flags),
	)
	return cmd
}

type rootFlags struct {
	debug bool
}
