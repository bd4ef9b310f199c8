package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feral-file/ff-registry/internal/auth"
	"github.com/feral-file/ff-registry/internal/clarity"
)

// signOutput carries everything a client needs to submit a timestamped request
type signOutput struct {
	Signer    string            `json:"signer"`
	Signature string            `json:"signature"`
	Timestamp uint64            `json:"timestamp"`
	Domain    clarity.JSONValue `json:"domain"`
	Message   clarity.JSONValue `json:"message"`
}

type domainFlags struct {
	name    string
	version string
	network string
}

func (f *domainFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "domain-name", "ff-registry", "signing domain name")
	cmd.Flags().StringVar(&f.version, "domain-version", "1.0.0", "signing domain version")
	cmd.Flags().StringVar(&f.network, "network", string(auth.NetworkMainnet), "mainnet or testnet")
}

func (f *domainFlags) domain() (auth.Domain, error) {
	return auth.NewDomain(f.name, f.version, auth.Network(f.network))
}

func newSignCommand(opts *options) *cobra.Command {
	var (
		domainOpts domainFlags
		action     string
		params     auth.MessageParams
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign an action message with the current timestamp",
		Long: `Sign an action message for the timestamped flow.

Actions and their fields:
  delete-endpoint     --owner --url
  list-my-endpoints   --owner
  transfer-ownership  --owner --url --new-owner

--owner defaults to the mainnet address of the key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := opts.signer()
			if err != nil {
				return err
			}
			d, err := domainOpts.domain()
			if err != nil {
				return err
			}

			if auth.Action(action) == auth.ActionChallengeResponse {
				return fmt.Errorf("use the challenge command to answer a challenge")
			}
			if params.Owner == "" {
				params.Owner = signer.Address(auth.Network(domainOpts.network))
			}
			if params.Timestamp == 0 {
				params.Timestamp = uint64(opts.clock.Now().UnixMilli())
			}

			message, err := auth.BuildMessage(auth.Action(action), params)
			if err != nil {
				return err
			}
			signature, err := signer.Sign(d, message)
			if err != nil {
				return err
			}

			return opts.print(signOutput{
				Signer:    signer.Address(auth.Network(domainOpts.network)),
				Signature: signature,
				Timestamp: params.Timestamp,
				Domain:    clarity.ToJSON(d.Tuple()),
				Message:   clarity.ToJSON(message),
			})
		},
	}

	domainOpts.register(cmd)
	cmd.Flags().StringVarP(&action, "action", "a", "", "action to sign (delete-endpoint, list-my-endpoints, transfer-ownership)")
	cmd.Flags().StringVar(&params.Owner, "owner", "", "entry owner")
	cmd.Flags().StringVar(&params.URL, "url", "", "canonical entry url")
	cmd.Flags().StringVar(&params.NewOwner, "new-owner", "", "new owner for transfer-ownership")
	cmd.Flags().Uint64Var(&params.Timestamp, "timestamp", 0, "unix milliseconds (default: now)")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}
