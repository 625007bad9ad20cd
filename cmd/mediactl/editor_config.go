package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Oniqq60/wiki_media/internal/editor"
)

func newEditorConfigCmd() *cobra.Command {
	var uploadURL string
	var height int

	cmd := &cobra.Command{
		Use:   "editor-config",
		Short: "Print the editor configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := editor.DefaultConfig()
			if uploadURL != "" {
				cfg.ImagesUploadURL = uploadURL
			}
			if height > 0 {
				cfg.Height = height
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			data, err := cfg.JSON()
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, data, "", "  "); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out.String())
			return err
		},
	}

	cmd.Flags().StringVar(&uploadURL, "upload-url", "", "override images_upload_url")
	cmd.Flags().IntVar(&height, "height", 0, "override the editor height")
	return cmd
}
