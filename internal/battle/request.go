package battle

import (
	"github.com/google/uuid"

	"github.com/dunelords/dune-server-go/internal/game"
)

// RequestType identifies what kind of decision an agent is being asked for.
type RequestType string

const (
	RequestChooseBattle            RequestType = "CHOOSE_BATTLE"
	RequestUseVoice                RequestType = "USE_VOICE"
	RequestUsePrescience           RequestType = "USE_PRESCIENCE"
	RequestRevealPrescienceElement RequestType = "REVEAL_PRESCIENCE_ELEMENT"
	RequestCreateBattlePlan        RequestType = "CREATE_BATTLE_PLAN"
	RequestCallTraitor             RequestType = "CALL_TRAITOR"
	RequestChooseCardsToDiscard    RequestType = "CHOOSE_CARDS_TO_DISCARD"
	RequestCaptureLeaderChoice     RequestType = "CAPTURE_LEADER_CHOICE"
)

// ActionType enumerates the actions an agent may answer with.
type ActionType string

const (
	ActionChooseBattle            ActionType = "CHOOSE_BATTLE"
	ActionUseVoice                ActionType = "USE_VOICE"
	ActionUsePrescience           ActionType = "USE_PRESCIENCE"
	ActionRevealPrescienceElement ActionType = "REVEAL_PRESCIENCE_ELEMENT"
	ActionCreateBattlePlan        ActionType = "CREATE_BATTLE_PLAN"
	ActionCallTraitor             ActionType = "CALL_TRAITOR"
	ActionDiscardCards            ActionType = "DISCARD_CARDS"
	ActionCaptureLeader           ActionType = "CAPTURE_LEADER"
	ActionKillLeader              ActionType = "KILL_LEADER"
	ActionPass                    ActionType = "PASS"
)

// AgentRequest is a pending decision addressed to one faction's agent. The
// engine suspends after emitting requests; the next ProcessStep call is
// expected to carry the responses.
type AgentRequest struct {
	ID               string         `json:"id"`
	Faction          game.Faction   `json:"faction"`
	Type             RequestType    `json:"requestType"`
	Prompt           string         `json:"prompt"`
	Context          map[string]any `json:"context,omitempty"`
	AvailableActions []ActionType   `json:"availableActions"`
}

// AgentResponse is an agent's answer to a pending request. A response that
// never arrives is treated exactly like Passed.
type AgentResponse struct {
	Faction   game.Faction   `json:"faction"`
	Action    ActionType     `json:"actionType"`
	Data      map[string]any `json:"data,omitempty"`
	Passed    bool           `json:"passed"`
	Reasoning string         `json:"reasoning,omitempty"`
}

func newRequest(f game.Faction, t RequestType, prompt string, ctx map[string]any, actions ...ActionType) AgentRequest {
	return AgentRequest{
		ID:               uuid.NewString(),
		Faction:          f,
		Type:             t,
		Prompt:           prompt,
		Context:          ctx,
		AvailableActions: actions,
	}
}

// takeResponse pops the first response from f out of the slice, so each
// record is consumed at most once, in array order.
func takeResponse(responses *[]AgentResponse, f game.Faction) (AgentResponse, bool) {
	for i, r := range *responses {
		if r.Faction == f {
			*responses = append((*responses)[:i], (*responses)[i+1:]...)
			return r, true
		}
	}
	return AgentResponse{}, false
}
