package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexheretic/crfseek/internal/processing"
	"github.com/alexheretic/crfseek/internal/util"
)

func newSampleEncodeCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags
	var crf int

	cmd := &cobra.Command{
		Use:   "sample-encode <input>",
		Short: "Measure one CRF value over sample windows",
		Long: `Encode and score sample windows at a single CRF value, reporting the
predicted full-encode score, size and duration without searching.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings(cmd, &flags)
			if err != nil {
				return err
			}

			rep := ctx.reporter()
			o := processing.New(settings, nil, rep)
			prediction, err := o.SampleEncode(cmd.Context(), args[0], crf)
			if err != nil {
				return err
			}

			rep.OperationComplete(fmt.Sprintf("crf %d predicts VMAF %.2f at %s (%s)",
				crf,
				prediction.MeanScore,
				util.FormatBytes(prediction.PredictedSizeBytes),
				util.FormatPercent(prediction.SizePercent)))
			return nil
		},
	}

	addSettingsFlags(cmd, &flags)
	cmd.Flags().IntVar(&crf, "crf", 0, "quality value to measure")
	_ = cmd.MarkFlagRequired("crf")
	return cmd
}
