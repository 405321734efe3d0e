/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/pdfqa-be/service"
	"github.com/tieubaoca/pdfqa-be/types"
)

// uploadDocumentCmd represents the upload-document command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Store and index a PDF for a user",
	Long: `Runs the same pipeline as POST /pdf/upload for a local file:
the PDF is stored under the user's namespace, chunked, embedded and
written to the configured vector store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		uid, _ := cmd.Flags().GetString("user")

		return withApp(cmd.Context(), func(a *app) error {
			result, err := uploadFile(cmd.Context(), a.documents, uid, filePath)
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", filePath, err)
			}
			fmt.Printf("Indexed %s as %s (%d pages, %d chunks)\n", filePath, result.DocumentID, result.Pages, result.Chunks)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringP("file", "f", "", "Path to the PDF to upload")
	uploadDocumentCmd.Flags().StringP("user", "u", "", "User id that will own the document")
	uploadDocumentCmd.MarkFlagRequired("file")
	uploadDocumentCmd.MarkFlagRequired("user")
}

// uploadFile streams one local file through the document service and
// prints its progress.
func uploadFile(ctx context.Context, documents *service.DocumentService, uid, filePath string) (*types.UploadResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	progress := make(chan types.ProcessingDocumentStatus)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for status := range progress {
			fmt.Printf("  %s: %d/%d chunks\n", status.Status, status.ProcessedChunks, status.TotalChunks)
		}
	}()
	result, err := documents.Upload(ctx, uid, filepath.Base(filePath), f, info.Size(), progress)
	<-printed
	return result, err
}
