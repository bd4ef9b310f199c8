package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/feral-file/ff-registry/internal/auth"
)

// challengeOutput is the body fragment to resubmit with the original request
type challengeOutput struct {
	ChallengeID string `json:"challengeId"`
	Signature   string `json:"signature"`
}

// typedValue mirrors clarity.JSONValue with the nesting the API emits
type typedValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type challengeInput struct {
	ChallengeID string     `json:"challengeId"`
	Domain      typedValue `json:"domain"`
	Message     typedValue `json:"message"`
}

func newChallengeCommand(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Sign a challenge returned by the API",
		Long: `Read a challenge_required response (or only its challenge object) and sign it.

The domain and message are taken from the challenge, so the signature matches the
deployment that issued it. The output holds the challengeId and signature to add
to the original request body.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := opts.signer()
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open challenge: %w", err)
				}
				defer f.Close()
				in = f
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read challenge: %w", err)
			}

			challenge, err := parseChallenge(data)
			if err != nil {
				return err
			}
			d, err := challenge.domain()
			if err != nil {
				return err
			}
			params, err := challenge.params()
			if err != nil {
				return err
			}

			message, err := auth.BuildMessage(auth.ActionChallengeResponse, params)
			if err != nil {
				return err
			}
			signature, err := signer.Sign(d, message)
			if err != nil {
				return err
			}
			return opts.print(challengeOutput{
				ChallengeID: challenge.ChallengeID,
				Signature:   signature,
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "challenge JSON file, - for stdin")
	return cmd
}

func parseChallenge(data []byte) (*challengeInput, error) {
	var wrapped struct {
		Challenge *challengeInput `json:"challenge"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("invalid challenge JSON: %w", err)
	}
	if wrapped.Challenge != nil {
		return wrapped.Challenge, nil
	}

	var challenge challengeInput
	if err := json.Unmarshal(data, &challenge); err != nil {
		return nil, fmt.Errorf("invalid challenge JSON: %w", err)
	}
	if challenge.ChallengeID == "" {
		return nil, fmt.Errorf("challengeId is missing")
	}
	return &challenge, nil
}

func (c *challengeInput) fields(v typedValue) (map[string]string, error) {
	if v.Type != "tuple" {
		return nil, fmt.Errorf("expected a tuple, got %q", v.Type)
	}
	var raw map[string]typedValue
	if err := json.Unmarshal(v.Value, &raw); err != nil {
		return nil, fmt.Errorf("invalid tuple: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, fv := range raw {
		var s string
		if err := json.Unmarshal(fv.Value, &s); err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = s
	}
	return out, nil
}

func (c *challengeInput) domain() (auth.Domain, error) {
	fields, err := c.fields(c.Domain)
	if err != nil {
		return auth.Domain{}, fmt.Errorf("domain: %w", err)
	}
	chainID, err := strconv.ParseUint(fields["chain-id"], 10, 64)
	if err != nil {
		return auth.Domain{}, fmt.Errorf("domain chain-id: %w", err)
	}
	return auth.Domain{Name: fields["name"], Version: fields["version"], ChainID: chainID}, nil
}

func (c *challengeInput) params() (auth.MessageParams, error) {
	fields, err := c.fields(c.Message)
	if err != nil {
		return auth.MessageParams{}, fmt.Errorf("message: %w", err)
	}
	timestamp, err := strconv.ParseUint(fields["timestamp"], 10, 64)
	if err != nil {
		return auth.MessageParams{}, fmt.Errorf("message timestamp: %w", err)
	}
	return auth.MessageParams{
		Owner:     fields["owner"],
		Nonce:     fields["nonce"],
		Timestamp: timestamp,
	}, nil
}
