package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newProbeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check the quota state of every API key",
		Long: `Issue one minimal search with every key in the keys file and report whether
it is active, out of quota, invalid or could not be checked. The first active
key becomes the starting key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, v)
			if err != nil {
				return err
			}
			defer a.Close()
			return nil
		},
	}
}
