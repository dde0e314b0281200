package battle

import "fmt"

// SubPhase represents the steps a single battle moves through. Transitions
// are strictly forward; ability steps may be skipped but never revisited. A
// traitor outcome short-circuits from TraitorCall to BattleResolution.
type SubPhase int

const (
	SubPhaseAggressorChoosing SubPhase = iota
	SubPhaseVoiceOpportunity
	SubPhasePrescienceOpportunity
	SubPhasePrescienceReveal
	SubPhaseCreatingBattlePlans
	SubPhaseRevealingPlans
	SubPhaseTraitorCall
	SubPhaseBattleResolution
	SubPhaseWinnerCardDiscardChoice
	SubPhaseHarkonnenCapture
)

var subPhaseNames = map[SubPhase]string{
	SubPhaseAggressorChoosing:       "AGGRESSOR_CHOOSING",
	SubPhaseVoiceOpportunity:        "VOICE_OPPORTUNITY",
	SubPhasePrescienceOpportunity:   "PRESCIENCE_OPPORTUNITY",
	SubPhasePrescienceReveal:        "PRESCIENCE_REVEAL",
	SubPhaseCreatingBattlePlans:     "CREATING_BATTLE_PLANS",
	SubPhaseRevealingPlans:          "REVEALING_PLANS",
	SubPhaseTraitorCall:             "TRAITOR_CALL",
	SubPhaseBattleResolution:        "BATTLE_RESOLUTION",
	SubPhaseWinnerCardDiscardChoice: "WINNER_CARD_DISCARD_CHOICE",
	SubPhaseHarkonnenCapture:        "HARKONNEN_CAPTURE",
}

func (p SubPhase) String() string {
	if name, ok := subPhaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("SUB_PHASE_%d", int(p))
}
