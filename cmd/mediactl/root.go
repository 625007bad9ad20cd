package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newRootCmd(fs afero.Fs) *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "mediactl",
		Short: "Upload wiki media and inspect editor settings",
		Long: `mediactl uploads images and videos to a wiki media service the same
way the wiki editor does, and prints the editor configuration.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			if debug {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log upload details")

	root.AddCommand(newUploadCmd(fs), newEditorConfigCmd(), newTokenCmd())
	return root
}
