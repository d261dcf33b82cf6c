package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexheretic/crfseek/internal/processing"
)

func newVMAFCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "vmaf --reference <file> --distorted <file>",
		Short: "Score an encoded file against its reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings(cmd, &flags)
			if err != nil {
				return err
			}

			reference, _ := cmd.Flags().GetString("reference")
			distorted, _ := cmd.Flags().GetString("distorted")

			o := processing.New(settings, nil, ctx.reporter())
			score, err := o.Score(cmd.Context(), reference, distorted)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "VMAF %.6f\n", score)
			return nil
		},
	}

	cmd.Flags().String("reference", "", "original source file")
	cmd.Flags().String("distorted", "", "encoded file to score")
	cmd.Flags().StringVar(&flags.vmafModel, "vmaf-model", "", "force a libvmaf model version")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("distorted")
	return cmd
}
