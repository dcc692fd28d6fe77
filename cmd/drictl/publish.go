package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-dri/pkg/dri"
)

var (
	convertCmd = &cobra.Command{
		Use:   "convert [dc|mods] [id]",
		Short: "Prints a record as Dublin Core or MODS XML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				doc string
				err error
			)
			switch args[0] {
			case "dc":
				doc, err = svc.ConvertToDC(cmd.Context(), args[1])
			case "mods":
				doc, err = svc.ConvertToMODS(cmd.Context(), args[1])
			default:
				return fmt.Errorf("unknown format %q, use dc or mods", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	approveCmd = &cobra.Command{
		Use:   "approve [id] [namespace]",
		Short: "Publishes a record to the archive and prints the archive id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := svc.ApproveRecord(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pid)
			return nil
		},
	}
	uploadCmd = &cobra.Command{
		Use:   "upload [path]",
		Short: "Stores a local file in upload storage and prints its location",
		Long: `Stores a local file in upload storage and prints its location.
The file is copied to a temporary file first, so the original is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmp, size, err := spool(args[0])
			if err != nil {
				return err
			}
			location, err := svc.UploadFile(cmd.Context(), dri.FileUpload{
				Path: tmp,
				Name: filepath.Base(args[0]),
				Size: size,
			})
			if err != nil {
				os.Remove(tmp)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), location)
			return nil
		},
	}
)

// spool copies path to a temporary file, since intake consumes its source
func spool(path string) (string, int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "drictl-upload-*")
	if err != nil {
		return "", 0, err
	}
	size, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, err
	}
	return tmp.Name(), size, nil
}
