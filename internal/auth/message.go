package auth

import (
	"fmt"

	"github.com/feral-file/ff-registry/internal/clarity"
	"github.com/feral-file/ff-registry/internal/domain"
)

// Action is the operation a signed message authorizes
type Action string

const (
	ActionDeleteEndpoint    Action = "delete-endpoint"
	ActionListMyEndpoints   Action = "list-my-endpoints"
	ActionTransferOwnership Action = "transfer-ownership"
	ActionChallengeResponse Action = "challenge-response"
)

// AllActions lists every action that can be signed
var AllActions = []Action{
	ActionDeleteEndpoint,
	ActionListMyEndpoints,
	ActionTransferOwnership,
	ActionChallengeResponse,
}

// MessageParams carries the values an action message is built from.
// Only the fields the action signs are read.
type MessageParams struct {
	URL       string
	Owner     string
	NewOwner  string
	Nonce     string
	Timestamp uint64 // Unix milliseconds
}

// BuildMessage returns the structured message a caller signs for an action:
//
//	delete-endpoint     action, url, owner, timestamp
//	list-my-endpoints   action, owner, timestamp
//	transfer-ownership  action, url, owner, new-owner, timestamp
//	challenge-response  action, owner, nonce, timestamp
func BuildMessage(action Action, params MessageParams) (clarity.Tuple, error) {
	owner, err := principal("owner", params.Owner)
	if err != nil {
		return nil, err
	}

	msg := clarity.Tuple{
		"action":    clarity.StringASCII(action),
		"owner":     owner,
		"timestamp": clarity.NewUInt(params.Timestamp),
	}

	switch action {
	case ActionListMyEndpoints:

	case ActionDeleteEndpoint:
		if params.URL == "" {
			return nil, fmt.Errorf("%w: url is required for %s", domain.ErrInvalidInput, action)
		}
		msg["url"] = clarity.StringASCII(params.URL)

	case ActionTransferOwnership:
		if params.URL == "" {
			return nil, fmt.Errorf("%w: url is required for %s", domain.ErrInvalidInput, action)
		}
		newOwner, err := principal("new-owner", params.NewOwner)
		if err != nil {
			return nil, err
		}
		msg["url"] = clarity.StringASCII(params.URL)
		msg["new-owner"] = newOwner

	case ActionChallengeResponse:
		if params.Nonce == "" {
			return nil, fmt.Errorf("%w: nonce is required for %s", domain.ErrInvalidInput, action)
		}
		msg["nonce"] = clarity.StringASCII(params.Nonce)

	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}

	// string-ascii values are checked here so a bad url fails as input, not as a hashing error
	if _, err := msg.Serialize(); err != nil {
		return nil, err
	}
	return msg, nil
}

func principal(field, address string) (clarity.StandardPrincipal, error) {
	if address == "" {
		return clarity.StandardPrincipal{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, field)
	}
	p, err := clarity.NewPrincipal(address)
	if err != nil {
		return clarity.StandardPrincipal{}, fmt.Errorf("%s: %w", field, err)
	}
	return p, nil
}
