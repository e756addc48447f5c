package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			if err := rt.app.API.Get(cmd.Context(), "/health", &result); err != nil {
				return err
			}

			rt.out.Print(result)
			return nil
		},
	}
}
