package field

import "fmt"

// Competition is the kind of event the monitored Tournament Manager
// instance is running. A few display modes and commands only exist for V5RC.
type Competition string

// Supported competition programs.
const (
	CompetitionV5RC  Competition = "V5RC"
	CompetitionVIQRC Competition = "VIQRC"
)

// ParseCompetition converts a configuration string into a Competition.
func ParseCompetition(s string) (Competition, error) {
	switch Competition(s) {
	case CompetitionV5RC, CompetitionVIQRC:
		return Competition(s), nil
	default:
		return "", fmt.Errorf("unknown competition %q", s)
	}
}

// Status describes where a field set is in its monitoring lifecycle.
type Status string

const (
	// StatusUnbound means the field set has been registered but no snapshot
	// has been observed yet.
	StatusUnbound Status = "UNBOUND"
	// StatusPolling means the field set is being monitored normally.
	StatusPolling Status = "POLLING"
	// StatusUnavailable means the control surface has failed enough
	// consecutive fetches that the last snapshot can no longer be trusted.
	StatusUnavailable Status = "UNAVAILABLE"
)

// AudienceDisplay is the audience display mode selected in Tournament Manager.
type AudienceDisplay string

// Audience display modes. The string values are the internal names used by
// Tournament Manager, not the labels shown in its UI.
const (
	DisplayBlank             AudienceDisplay = "BLANK"
	DisplayLogo              AudienceDisplay = "LOGO"
	DisplayIntro             AudienceDisplay = "INTRO"
	DisplayInMatch           AudienceDisplay = "IN_MATCH"
	DisplaySavedMatchResults AudienceDisplay = "RESULTS"
	DisplaySchedule          AudienceDisplay = "SCHEDULE"
	DisplayRankings          AudienceDisplay = "RANKINGS"
	DisplaySkillsRankings    AudienceDisplay = "SC_RANKINGS"
	DisplayAllianceSelection AudienceDisplay = "ALLIANCE_SELECTION"
	DisplayElimBracket       AudienceDisplay = "BRACKET"
	DisplaySlides            AudienceDisplay = "AWARD"
	DisplayInspection        AudienceDisplay = "INSPECTION"
)

//nolint:gochecknoglobals // Lookup table for parsing, never mutated.
var audienceDisplays = map[AudienceDisplay]struct{}{
	DisplayBlank: {}, DisplayLogo: {}, DisplayIntro: {}, DisplayInMatch: {},
	DisplaySavedMatchResults: {}, DisplaySchedule: {}, DisplayRankings: {},
	DisplaySkillsRankings: {}, DisplayAllianceSelection: {},
	DisplayElimBracket: {}, DisplaySlides: {}, DisplayInspection: {},
}

// ParseAudienceDisplay converts an internal display name into an AudienceDisplay.
func ParseAudienceDisplay(s string) (AudienceDisplay, error) {
	if _, ok := audienceDisplays[AudienceDisplay(s)]; !ok {
		return "", fmt.Errorf("unknown audience display %q", s)
	}

	return AudienceDisplay(s), nil
}

// AvailableFor reports whether the display mode exists for the given program.
// Alliance selection and the elimination bracket are V5RC-only screens.
func (d AudienceDisplay) AvailableFor(c Competition) bool {
	if d == DisplayAllianceSelection || d == DisplayElimBracket {
		return c == CompetitionV5RC
	}

	return true
}

// TimerPhase is the state of the match timer as shown on a field set.
type TimerPhase string

// Timer phases, named after the Tournament Manager match states.
const (
	PhasePrestart      TimerPhase = "PRESTART"
	PhaseAutonomous    TimerPhase = "AUTONOMOUS"
	PhaseDriverControl TimerPhase = "DRIVER CONTROL"
	PhasePaused        TimerPhase = "PAUSED"
	PhaseDisabled      TimerPhase = "DISABLED"
	PhaseTimeout       TimerPhase = "TIMEOUT"
)

// ParseTimerPhase converts a state name into a TimerPhase.
func ParseTimerPhase(s string) (TimerPhase, error) {
	switch TimerPhase(s) {
	case PhasePrestart, PhaseAutonomous, PhaseDriverControl,
		PhasePaused, PhaseDisabled, PhaseTimeout:
		return TimerPhase(s), nil
	default:
		return "", fmt.Errorf("unknown timer phase %q", s)
	}
}

// Running reports whether a match is actively counting down in this phase.
func (p TimerPhase) Running() bool {
	return p == PhaseAutonomous || p == PhaseDriverControl
}

// ActiveMatch is the kind of match currently loaded on a field.
type ActiveMatch string

// Active match kinds.
const (
	ActiveMatchNone    ActiveMatch = "NO ACTIVE MATCH"
	ActiveMatchTimeout ActiveMatch = "TIMEOUT"
	ActiveMatchMatch   ActiveMatch = "MATCH"
)

// ParseActiveMatch converts a name into an ActiveMatch.
func ParseActiveMatch(s string) (ActiveMatch, error) {
	switch ActiveMatch(s) {
	case ActiveMatchNone, ActiveMatchTimeout, ActiveMatchMatch:
		return ActiveMatch(s), nil
	default:
		return "", fmt.Errorf("unknown active match kind %q", s)
	}
}

// AutonomousBonus is the autonomous period winner selected on a V5RC field.
type AutonomousBonus string

// Autonomous bonus states.
const (
	BonusNone AutonomousBonus = "NONE"
	BonusTie  AutonomousBonus = "TIE"
	BonusRed  AutonomousBonus = "RED"
	BonusBlue AutonomousBonus = "BLUE"
)

// ParseAutonomousBonus converts a name into an AutonomousBonus.
func ParseAutonomousBonus(s string) (AutonomousBonus, error) {
	switch AutonomousBonus(s) {
	case BonusNone, BonusTie, BonusRed, BonusBlue:
		return AutonomousBonus(s), nil
	default:
		return "", fmt.Errorf("unknown autonomous bonus %q", s)
	}
}

// Snapshot is an immutable description of everything observable about a field
// set at one poll instant. Snapshots are compared field by field; a new
// observation always produces a new value, never an in-place mutation.
type Snapshot struct {
	// Status is the monitoring lifecycle state the snapshot was taken in.
	Status Status `json:"status"`
	// AudienceDisplay is the currently selected audience display mode.
	AudienceDisplay AudienceDisplay `json:"audience_display"`
	// TimerDisplay is the raw match timer text as shown in the UI.
	TimerDisplay string `json:"match_timer_content"`
	// MatchTime is the match time remaining in seconds, 0 when no match runs.
	MatchTime int `json:"match_time"`
	// PrestartTime is the prestart countdown in seconds, 0 outside prestart.
	PrestartTime int `json:"prestart_time"`
	// TimerPhase is the match timer state.
	TimerPhase TimerPhase `json:"match_state"`
	// FieldNumber is the currently selected field, 0 when none is selected.
	FieldNumber int `json:"current_field_id"`
	// MatchOnField is the identifier of the match on the field, if any.
	MatchOnField string `json:"match_on_field"`
	// SavedMatchResults is the identifier of the last saved result, if any.
	SavedMatchResults string `json:"saved_match_results"`
	// AutonomousBonus is the autonomous winner selection (V5RC).
	AutonomousBonus AutonomousBonus `json:"autonomous_bonus"`
	// PlaySounds reports whether field sounds are enabled.
	PlaySounds bool `json:"play_sounds"`
	// AutoShowResults reports whether results are shown automatically.
	AutoShowResults bool `json:"show_results_automatically"`
	// ActiveMatch is the kind of match currently loaded.
	ActiveMatch ActiveMatch `json:"active_match"`
}

// Equal compares two snapshots structurally, attribute by attribute.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Status == other.Status &&
		s.AudienceDisplay == other.AudienceDisplay &&
		s.TimerDisplay == other.TimerDisplay &&
		s.MatchTime == other.MatchTime &&
		s.PrestartTime == other.PrestartTime &&
		s.TimerPhase == other.TimerPhase &&
		s.FieldNumber == other.FieldNumber &&
		s.MatchOnField == other.MatchOnField &&
		s.SavedMatchResults == other.SavedMatchResults &&
		s.AutonomousBonus == other.AutonomousBonus &&
		s.PlaySounds == other.PlaySounds &&
		s.AutoShowResults == other.AutoShowResults &&
		s.ActiveMatch == other.ActiveMatch
}

// Validate checks that every enum-valued attribute carries a known value.
// Used when decoding snapshots received from the control surface agent.
func (s Snapshot) Validate() error {
	if s.Status != "" && s.Status != StatusUnbound &&
		s.Status != StatusPolling && s.Status != StatusUnavailable {
		return fmt.Errorf("unknown status %q", s.Status)
	}

	if _, err := ParseAudienceDisplay(string(s.AudienceDisplay)); err != nil {
		return err
	}

	if _, err := ParseTimerPhase(string(s.TimerPhase)); err != nil {
		return err
	}

	if _, err := ParseActiveMatch(string(s.ActiveMatch)); err != nil {
		return err
	}

	if _, err := ParseAutonomousBonus(string(s.AutonomousBonus)); err != nil {
		return err
	}

	return nil
}
