package roster

// Team is a single row of a division's team list.
type Team struct {
	// Number is the team number, e.g. "1234A".
	Number string `json:"number"`
	// Name is the team name.
	Name string `json:"name"`
	// Location is the team's city and region.
	Location string `json:"location"`
	// School is the team's school or organization.
	School string `json:"school"`
}

// MatchV5RC is a single row of a V5RC division's match list.
type MatchV5RC struct {
	// ID is the match identifier, e.g. "Q12".
	ID string `json:"id"`
	// RedTeams are the team numbers on the red alliance.
	RedTeams []string `json:"red_teams"`
	// BlueTeams are the team numbers on the blue alliance.
	BlueTeams []string `json:"blue_teams"`
	// RedScore is the red alliance score.
	RedScore int `json:"red_score"`
	// BlueScore is the blue alliance score.
	BlueScore int `json:"blue_score"`
}

// MatchVIQRC is a single row of a VIQRC division's match list.
type MatchVIQRC struct {
	// ID is the match identifier, e.g. "Q12".
	ID string `json:"id"`
	// Team1 is the first team number.
	Team1 string `json:"team_1"`
	// Team2 is the second team number.
	Team2 string `json:"team_2"`
	// Score is the cooperative score, nil while the match is unscored.
	Score *float64 `json:"score"`
}

// RankingV5RC is a single row of a V5RC division's rankings table.
type RankingV5RC struct {
	// Rank is the team's position in the table.
	Rank int `json:"rank"`
	// TeamNumber is the ranked team.
	TeamNumber string `json:"team_number"`
	// AverageWPs is the average win points.
	AverageWPs float64 `json:"average_wps"`
	// AverageAPs is the average autonomous points.
	AverageAPs float64 `json:"average_aps"`
	// AverageSPs is the average strength-of-schedule points.
	AverageSPs float64 `json:"average_sps"`
	// Wins, Losses and Ties count qualification results.
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// RankingVIQRC is a single row of a VIQRC division's rankings table.
type RankingVIQRC struct {
	// Rank is the team's position in the table.
	Rank int `json:"rank"`
	// TeamNumber is the ranked team.
	TeamNumber string `json:"team_number"`
	// MatchesPlayed counts scored qualification matches.
	MatchesPlayed int `json:"matches_played"`
	// AverageScore is the team's average qualification score.
	AverageScore float64 `json:"average_score"`
}

// SkillsRanking is a single row of the event-wide skills rankings table.
type SkillsRanking struct {
	// Rank is the team's position in the table.
	Rank int `json:"rank"`
	// TeamNumber is the ranked team.
	TeamNumber string `json:"team_number"`
	// TeamName is the ranked team's name.
	TeamName string `json:"team_name"`
	// TotalScore is the combined skills score.
	TotalScore float64 `json:"total_score"`
	// ProgrammingHighScore is the best autonomous coding run.
	ProgrammingHighScore float64 `json:"programming_high_score"`
	// ProgrammingAttempts counts autonomous coding runs.
	ProgrammingAttempts int `json:"programming_attempts"`
	// DriverHighScore is the best driving run.
	DriverHighScore float64 `json:"driver_high_score"`
	// DriverAttempts counts driving runs.
	DriverAttempts int `json:"driver_attempts"`
}
