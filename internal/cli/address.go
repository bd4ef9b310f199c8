package cli

import (
	"github.com/spf13/cobra"

	"github.com/feral-file/ff-registry/internal/auth"
)

type addressOutput struct {
	Mainnet string `json:"mainnet"`
	Testnet string `json:"testnet"`
}

func newAddressCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the mainnet and testnet addresses of the key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := opts.signer()
			if err != nil {
				return err
			}
			return opts.print(addressOutput{
				Mainnet: signer.Address(auth.NetworkMainnet),
				Testnet: signer.Address(auth.NetworkTestnet),
			})
		},
	}
}
