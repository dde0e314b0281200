package battle

// EventType categorizes an entry in the battle phase event stream.
type EventType string

const (
	EventBattleStarted                 EventType = "BATTLE_STARTED"
	EventBattlePlanSubmitted           EventType = "BATTLE_PLAN_SUBMITTED"
	EventBattlePlansRevealed           EventType = "BATTLE_PLANS_REVEALED"
	EventBattlePlanInvalid             EventType = "BATTLE_PLAN_INVALID"
	EventPrescienceUsed                EventType = "PRESCIENCE_USED"
	EventPrescienceElementRevealed     EventType = "PRESCIENCE_ELEMENT_REVEALED"
	EventPrescienceCommitmentViolation EventType = "PRESCIENCE_COMMITMENT_VIOLATION"
	EventVoiceUsed                     EventType = "VOICE_USED"
	EventVoiceComplied                 EventType = "VOICE_COMPLIED"
	EventVoiceViolation                EventType = "VOICE_VIOLATION"
	EventTraitorCalled                 EventType = "TRAITOR_CALLED"
	EventLasgunShieldExplosion         EventType = "LASGUN_SHIELD_EXPLOSION"
	EventKwisatzHaderachActivated      EventType = "KWISATZ_HADERACH_ACTIVATED"
	EventSpiceCollected                EventType = "SPICE_COLLECTED"
	EventLeaderKilled                  EventType = "LEADER_KILLED"
	EventLeaderCaptured                EventType = "LEADER_CAPTURED"
	EventLeaderReturned                EventType = "LEADER_RETURNED"
	EventCardDiscarded                 EventType = "CARD_DISCARDED"
	EventBattleResolved                EventType = "BATTLE_RESOLVED"
	EventBattlePhaseComplete           EventType = "BATTLE_PHASE_COMPLETE"
)

// Event is one ordered, append-only entry of the phase event stream.
type Event struct {
	Type    EventType      `json:"type"`
	Data    map[string]any `json:"data,omitempty"`
	Message string         `json:"message"`
}

// EventsOfType filters a step's events, mostly a test convenience.
func EventsOfType(events []Event, t EventType) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
