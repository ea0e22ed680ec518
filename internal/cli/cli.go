// Package cli wires subcommands and flags to the image service
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/UnendingLoop/ImageResizer/internal/batch"
	"github.com/UnendingLoop/ImageResizer/internal/model"
	"github.com/UnendingLoop/ImageResizer/internal/runlog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const appDescription = "Batch Image Resizer - Resize and Convert Images in Bulk"

// ImageProcessor - контракт сервиса для команд
type ImageProcessor interface {
	PrepareDir(ctx context.Context, dir string) error
	ResizeFile(ctx context.Context, task model.FileTask) model.Result
	ConvertFile(ctx context.Context, task model.FileTask) model.Result
	ThumbnailFile(ctx context.Context, task model.FileTask) model.Result
}

// Defaults come from configuration and can be overridden by flags.
type Defaults struct {
	Workers int
}

// NewRootCmd builds the command tree. Running it without a subcommand prints help.
func NewRootCmd(svc ImageProcessor, defaults Defaults) *cobra.Command {
	root := &cobra.Command{
		Use:           "imgresizer",
		Short:         appDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	root.AddCommand(
		newResizeCmd(svc),
		newBatchResizeCmd(svc, defaults),
		newConvertCmd(svc),
		newThumbnailCmd(svc),
	)

	return root
}

type fileFlags struct {
	input, output string
	width, height int
}

func (f *fileFlags) bind(fs *pflag.FlagSet, inHelp, outHelp, sizeNoun string) {
	fs.StringVarP(&f.input, "input", "i", "", inHelp)
	fs.StringVarP(&f.output, "output", "o", "", outHelp)
	fs.IntVarP(&f.width, "width", "w", 0, "Width of the "+sizeNoun)
	fs.IntVarP(&f.height, "height", "H", 0, "Height of the "+sizeNoun)
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		if err := cmd.MarkFlagRequired(n); err != nil {
			panic(err)
		}
	}
}

func newResizeCmd(svc ImageProcessor) *cobra.Command {
	var f fileFlags

	cmd := &cobra.Command{
		Use:   "resize",
		Short: "Resize a single image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, _ := runlog.WithLogger(cmd.Context(), cmd.Name())
			res := svc.ResizeFile(ctx, model.FileTask{
				Operation:   model.OpResize,
				Source:      f.input,
				Destination: f.output,
				Width:       f.width,
				Height:      f.height,
			})
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	f.bind(cmd.Flags(), "Input image file", "Output image file", "resized image")
	markRequired(cmd, "input", "output", "width", "height")

	return cmd
}

func newBatchResizeCmd(svc ImageProcessor, defaults Defaults) *cobra.Command {
	var (
		f            fileFlags
		workers      int
		preserveTree bool
	)

	cmd := &cobra.Command{
		Use:   "batch-resize",
		Short: "Resize all images in a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, _ := runlog.WithLogger(cmd.Context(), cmd.Name())
			out := cmd.OutOrStdout()

			walker := batch.NewWalker(svc, batch.Options{
				Workers:      workers,
				PreserveTree: preserveTree,
				OnResult:     func(res model.Result) { printResult(out, res) },
			})

			rep, err := walker.Run(ctx, f.input, f.output, f.width, f.height)
			if err != nil {
				// как и пофайловые ошибки - печатаем и выходим с нулевым кодом
				fmt.Fprintln(out, err)
				return nil
			}
			fmt.Fprintln(out, rep.Summary())
			return nil
		},
	}
	f.bind(cmd.Flags(), "Input folder containing images", "Output folder for resized images", "resized images")
	cmd.Flags().IntVar(&workers, "workers", defaults.Workers, "Number of images processed in parallel")
	cmd.Flags().BoolVar(&preserveTree, "preserve-tree", false, "Mirror input subdirectories in the output folder instead of flattening it")
	markRequired(cmd, "input", "output", "width", "height")

	return cmd
}

func newConvertCmd(svc ImageProcessor) *cobra.Command {
	var input, output, format string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert image format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, _ := runlog.WithLogger(cmd.Context(), cmd.Name())
			res := svc.ConvertFile(ctx, model.FileTask{
				Operation:   model.OpConvert,
				Source:      input,
				Destination: output,
				Format:      strings.ToUpper(format),
			})
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input image file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output image file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output image format (JPEG, PNG, WEBP, GIF, BMP, TIFF)")
	markRequired(cmd, "input", "output", "format")

	return cmd
}

func newThumbnailCmd(svc ImageProcessor) *cobra.Command {
	var f fileFlags

	cmd := &cobra.Command{
		Use:   "thumbnail",
		Short: "Scale and centre-crop a single image to exactly the given size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, _ := runlog.WithLogger(cmd.Context(), cmd.Name())
			res := svc.ThumbnailFile(ctx, model.FileTask{
				Operation:   model.OpThumbNail,
				Source:      f.input,
				Destination: f.output,
				Width:       f.width,
				Height:      f.height,
			})
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	f.bind(cmd.Flags(), "Input image file", "Output image file", "thumbnail")
	markRequired(cmd, "input", "output", "width", "height")

	return cmd
}

func printResult(w io.Writer, res model.Result) {
	fmt.Fprintln(w, res.String())
}
