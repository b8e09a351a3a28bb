package cmd

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "스키마/테이블/인덱스 생성 (IF NOT EXISTS)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			instruments, prices := tableLayout()
			return a.pool.Migrate(cmd.Context(), instruments, prices)
		},
	}
}
