package field

import "fmt"

// CommandKind identifies a mutating operation against a field set.
type CommandKind string

// Commands understood by the bridge. The names double as URL path segments
// in the outward API.
const (
	CommandStart              CommandKind = "start"
	CommandEndEarly           CommandKind = "end-early"
	CommandAbort              CommandKind = "abort"
	CommandResetTimer         CommandKind = "reset-timer"
	CommandSetAudienceDisplay CommandKind = "set-audience-display"
	CommandSetFieldNumber     CommandKind = "set-field-number"
	CommandSetAutonomousBonus CommandKind = "set-autonomous-bonus"
	CommandSetPlaySounds      CommandKind = "set-play-sounds"
	CommandSetAutoShowResults CommandKind = "set-auto-show-results"
)

// ParseCommandKind converts a path segment into a CommandKind.
func ParseCommandKind(s string) (CommandKind, error) {
	switch CommandKind(s) {
	case CommandStart, CommandEndEarly, CommandAbort, CommandResetTimer,
		CommandSetAudienceDisplay, CommandSetFieldNumber,
		CommandSetAutonomousBonus, CommandSetPlaySounds,
		CommandSetAutoShowResults:
		return CommandKind(s), nil
	default:
		return "", fmt.Errorf("unknown command %q", s)
	}
}

// CommandParams carries the argument of a command. Only the field relevant to
// the command kind is consulted; the rest are ignored.
type CommandParams struct {
	// Display is the target mode for set-audience-display.
	Display AudienceDisplay `json:"display,omitempty"`
	// FieldNumber is the target field for set-field-number.
	FieldNumber int `json:"field_number,omitempty"`
	// Bonus is the target selection for set-autonomous-bonus.
	Bonus AutonomousBonus `json:"bonus,omitempty"`
	// Enabled is the target value for the boolean setting commands.
	Enabled bool `json:"enabled,omitempty"`
}

// Validate checks the parameters against the command kind and competition
// before the command is issued.
func (k CommandKind) Validate(params CommandParams, c Competition) error {
	switch k {
	case CommandSetAudienceDisplay:
		if _, err := ParseAudienceDisplay(string(params.Display)); err != nil {
			return err
		}

		if !params.Display.AvailableFor(c) {
			return fmt.Errorf("display %q is not available for %s", params.Display, c)
		}
	case CommandSetFieldNumber:
		if params.FieldNumber <= 0 {
			return fmt.Errorf("field number %d out of range", params.FieldNumber)
		}
	case CommandSetAutonomousBonus:
		if c != CompetitionV5RC {
			return fmt.Errorf("autonomous bonus is not available for %s", c)
		}

		if _, err := ParseAutonomousBonus(string(params.Bonus)); err != nil {
			return err
		}
	case CommandStart, CommandEndEarly, CommandAbort, CommandResetTimer,
		CommandSetPlaySounds, CommandSetAutoShowResults:
		// No parameters.
	default:
		return fmt.Errorf("unknown command %q", k)
	}

	return nil
}

// ConfirmedBy reports whether the snapshot satisfies the command's expected
// post-condition. The executor polls until this holds or its timeout elapses.
func (k CommandKind) ConfirmedBy(params CommandParams, snap Snapshot) bool {
	switch k {
	case CommandStart:
		return snap.TimerPhase.Running()
	case CommandEndEarly, CommandAbort, CommandResetTimer:
		return snap.TimerPhase == PhaseDisabled
	case CommandSetAudienceDisplay:
		return snap.AudienceDisplay == params.Display
	case CommandSetFieldNumber:
		return snap.FieldNumber == params.FieldNumber
	case CommandSetAutonomousBonus:
		return snap.AutonomousBonus == params.Bonus
	case CommandSetPlaySounds:
		return snap.PlaySounds == params.Enabled
	case CommandSetAutoShowResults:
		return snap.AutoShowResults == params.Enabled
	default:
		return false
	}
}
