package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexheretic/crfseek/internal/discovery"
	"github.com/alexheretic/crfseek/internal/processing"
	"github.com/alexheretic/crfseek/internal/util"
)

func newCRFSearchCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "crf-search <input>",
		Short: "Search for the best CRF meeting the quality and size targets",
		Long: `Search for the highest CRF value whose encode is predicted to meet the
minimum VMAF score and maximum size, by encoding and scoring short samples.
The input may be a video file or a directory of video files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings(cmd, &flags)
			if err != nil {
				return err
			}

			inputs, err := discovery.Expand(args[0])
			if err != nil {
				return err
			}

			rep := ctx.reporter()
			o := processing.New(settings, nil, rep)
			for _, input := range inputs {
				result, err := o.CRFSearch(cmd.Context(), input)
				if err != nil {
					return err
				}

				rep.OperationComplete(fmt.Sprintf("crf %d predicts VMAF %.2f at %s",
					result.Best.CRF,
					result.Best.Prediction.MeanScore,
					util.FormatBytes(result.Best.Prediction.PredictedSizeBytes)))
			}
			return nil
		},
	}

	addSettingsFlags(cmd, &flags)
	addCRFRangeFlag(cmd, &flags)
	return cmd
}
