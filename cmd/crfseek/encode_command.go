package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexheretic/crfseek/internal/processing"
	"github.com/alexheretic/crfseek/internal/util"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags
	var crf int
	var output string

	cmd := &cobra.Command{
		Use:   "encode <input>",
		Short: "Encode the whole input at a fixed CRF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings(cmd, &flags)
			if err != nil {
				return err
			}

			outputPath, err := resolveOutput(args[0], output)
			if err != nil {
				return err
			}

			rep := ctx.reporter()
			o := processing.New(settings, nil, rep)
			result, err := o.Encode(cmd.Context(), args[0], outputPath, crf)
			if err != nil {
				return err
			}

			rep.OperationComplete(fmt.Sprintf("encoded %s (%.1f%% smaller)",
				result.OutputFile,
				util.SizeReduction(result.OriginalSize, result.EncodedSize)))
			return nil
		},
	}

	addSettingsFlags(cmd, &flags)
	cmd.Flags().IntVar(&crf, "crf", 0, "quality value to encode at")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input stem>.crfseek.mkv)")
	_ = cmd.MarkFlagRequired("crf")
	return cmd
}

func newAutoEncodeCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags
	var output string

	cmd := &cobra.Command{
		Use:   "auto-encode <input>",
		Short: "Search for the best CRF, then encode the whole input with it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings(cmd, &flags)
			if err != nil {
				return err
			}

			outputPath, err := resolveOutput(args[0], output)
			if err != nil {
				return err
			}

			rep := ctx.reporter()
			o := processing.New(settings, nil, rep)
			_, result, err := o.AutoEncode(cmd.Context(), args[0], outputPath)
			if err != nil {
				return err
			}

			rep.OperationComplete(fmt.Sprintf("encoded %s at crf %d (%.1f%% smaller)",
				result.OutputFile,
				result.CRF,
				util.SizeReduction(result.OriginalSize, result.EncodedSize)))
			return nil
		},
	}

	addSettingsFlags(cmd, &flags)
	addCRFRangeFlag(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input stem>.crfseek.mkv)")
	return cmd
}

// resolveOutput picks the output path: the explicit flag value, or the input
// name with a .crfseek.mkv suffix beside the input.
func resolveOutput(input, output string) (string, error) {
	if output != "" {
		return filepath.Abs(output)
	}
	stem := util.GetFileStem(input)
	candidate := filepath.Join(filepath.Dir(input), stem+".crfseek.mkv")
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(abs, input) {
		return "", fmt.Errorf("output path %s would overwrite the input", abs)
	}
	return abs, nil
}
