package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/auth"
)

// options shared by every command
type options struct {
	v     *viper.Viper
	out   io.Writer
	clock adapter.Clock
}

// NewRootCommand builds the registry-sign command tree writing its output to out.
// The private key is read from --key or FF_REGISTRY_PRIVATE_KEY.
func NewRootCommand(out io.Writer, clock adapter.Clock) *cobra.Command {
	opts := &options{v: viper.New(), out: out, clock: clock}
	opts.v.SetEnvPrefix("FF_REGISTRY")
	_ = opts.v.BindEnv("private_key")

	root := &cobra.Command{
		Use:   "registry-sign",
		Short: "Sign registry ownership proofs",
		Long: `Build and sign the structured messages that prove ownership of registry entries.

Examples:
  # Show the addresses of a key
  registry-sign address --key $KEY

  # Sign a delete request for an entry
  registry-sign sign --action delete-endpoint --owner SP... --url https://api.example.com/x402

  # Answer a challenge returned by the API
  curl -X DELETE .../entries/SP.../abc | registry-sign challenge`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().String("key", "", "hex secp256k1 private key (default: $FF_REGISTRY_PRIVATE_KEY)")
	_ = opts.v.BindPFlag("private_key", root.PersistentFlags().Lookup("key"))

	root.AddCommand(newAddressCommand(opts))
	root.AddCommand(newSignCommand(opts))
	root.AddCommand(newChallengeCommand(opts))
	return root
}

func (o *options) signer() (*auth.Signer, error) {
	key := o.v.GetString("private_key")
	if key == "" {
		return nil, errors.New("a private key is required (--key or FF_REGISTRY_PRIVATE_KEY)")
	}
	return auth.NewSigner(key)
}

func (o *options) print(v any) error {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
