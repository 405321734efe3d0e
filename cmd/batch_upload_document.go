/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfqa-be/utils"
	"go.uber.org/zap"
)

// batchUploadDocumentCmd represents the batch-upload-document command
var batchUploadDocumentCmd = &cobra.Command{
	Use:   "batch-upload-document",
	Short: "Store and index every PDF in a directory for a user",
	Long: `Uploads each .pdf file directly inside --directory. A failing file is
logged and skipped, the command exits non-zero if any file failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		directory, _ := cmd.Flags().GetString("directory")
		uid, _ := cmd.Flags().GetString("user")

		entries, err := os.ReadDir(directory)
		if err != nil {
			return fmt.Errorf("failed to read directory: %w", err)
		}

		return withApp(cmd.Context(), func(a *app) error {
			var uploaded, failed int
			for _, entry := range entries {
				if entry.IsDir() || !utils.IsPDF(entry.Name()) {
					continue
				}
				if cmd.Context().Err() != nil {
					break
				}
				filePath := filepath.Join(directory, entry.Name())
				result, err := uploadFile(cmd.Context(), a.documents, uid, filePath)
				if err != nil {
					failed++
					zap.L().Error("Failed to upload document", zap.String("file", filePath), zap.Error(err))
					continue
				}
				uploaded++
				fmt.Printf("Indexed %s as %s (%d pages, %d chunks)\n", filePath, result.DocumentID, result.Pages, result.Chunks)
			}

			fmt.Printf("Uploaded %d documents, %d failed\n", uploaded, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, uploaded+failed)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(batchUploadDocumentCmd)

	batchUploadDocumentCmd.Flags().String("directory", "", "Path to the directory to upload")
	batchUploadDocumentCmd.Flags().StringP("user", "u", "", "User id that will own the documents")
	batchUploadDocumentCmd.MarkFlagRequired("directory")
	batchUploadDocumentCmd.MarkFlagRequired("user")
}
