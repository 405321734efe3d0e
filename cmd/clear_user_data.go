/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// clearUserDataCmd represents the clear-user-data command
var clearUserDataCmd = &cobra.Command{
	Use:   "clear-user-data",
	Short: "Delete every file, vector and history entry of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, _ := cmd.Flags().GetString("user")

		return withApp(cmd.Context(), func(a *app) error {
			result, err := a.users.ClearData(cmd.Context(), uid)
			if result != nil {
				fmt.Printf("Deleted %d files, vectors cleared: %t, history cleared: %t\n",
					result.FilesDeleted, result.VectorsCleared, result.HistoryCleared)
			}
			if err != nil {
				return fmt.Errorf("failed to clear data of %s: %w", uid, err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(clearUserDataCmd)

	clearUserDataCmd.Flags().StringP("user", "u", "", "User id to clear")
	clearUserDataCmd.MarkFlagRequired("user")
}
