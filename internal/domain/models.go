package domain

type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

func (t Tier) Valid() bool {
	switch t {
	case TierS, TierA, TierB, TierC, TierD:
		return true
	}
	return false
}

type Era string

const (
	EraNone         Era = "NONE"
	EraOldSchool    Era = "OLD_SCHOOL"
	EraNewSchool    Era = "NEW_SCHOOL"
	EraNewestSchool Era = "NEWEST_SCHOOL"
)

func (e Era) Valid() bool {
	switch e {
	case EraNone, EraOldSchool, EraNewSchool, EraNewestSchool:
		return true
	}
	return false
}

type Category string

const (
	CategoryAxeShield Category = "AXE_SHIELD"
	CategoryDiamond   Category = "DIAMOND"
	CategoryNetherite Category = "NETHERITE"
	CategoryOverall   Category = "OVERALL"
)

// Categories lists every tracked category, OVERALL included.
func Categories() []Category {
	return []Category{CategoryAxeShield, CategoryDiamond, CategoryNetherite, CategoryOverall}
}

// CombatCategory reports whether matches can be recorded under c.
// OVERALL is a display aggregate only.
func (c Category) CombatCategory() bool {
	switch c {
	case CategoryAxeShield, CategoryDiamond, CategoryNetherite:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	return c.CombatCategory() || c == CategoryOverall
}

type BattleType string

const (
	BattleDuel BattleType = "DUEL"
	BattleFFA  BattleType = "FFA"
)

func (b BattleType) Valid() bool {
	return b == BattleDuel || b == BattleFFA
}

// ChampBadge is the denormalized record of a championship placement kept on
// the player; the Championship row stays the source of truth.
type ChampBadge struct {
	SeasonKey string `json:"seasonKey"`
	Place     int    `json:"place"`
}

type CategoryStats struct {
	Elo    float64 `json:"elo"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Tier   Tier    `json:"tier"`

	// ManualRank is an admin placement override for leaderboard ordering.
	// Zero means unset.
	ManualRank int `json:"manualRank,omitempty"`
}

// SeasonStats holds one season's per-category blocks.
type SeasonStats map[Category]CategoryStats

type Player struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	DisplayName   string                 `json:"displayName"`
	SkinName      string                 `json:"skinName"`
	Era           Era                    `json:"era"`
	Location      string                 `json:"location,omitempty"`
	PrimeTime     string                 `json:"primeTime,omitempty"`
	CustomRank    string                 `json:"customRank,omitempty"`
	LastActive    int64                  `json:"lastActive"`
	Championships []ChampBadge           `json:"championships"`
	Stats         map[string]SeasonStats `json:"stats"`
}

// Clone deep-copies the player so store snapshots never alias live state.
func (p Player) Clone() Player {
	out := p
	out.Championships = make([]ChampBadge, len(p.Championships))
	copy(out.Championships, p.Championships)
	out.Stats = make(map[string]SeasonStats, len(p.Stats))
	for key, season := range p.Stats {
		s := make(SeasonStats, len(season))
		for cat, stats := range season {
			s[cat] = stats
		}
		out.Stats[key] = s
	}
	return out
}

// Match is an immutable record of one resolved contest. EloGain is the
// winner's aggregate delta, kept for display.
type Match struct {
	ID             string     `json:"id"`
	WinnerID       string     `json:"winnerId"`
	ParticipantIDs []string   `json:"participantIds"`
	BattleType     BattleType `json:"battleType"`
	Category       Category   `json:"category"`
	EloGain        float64    `json:"eloGain"`
	Timestamp      int64      `json:"timestamp"`
	Location       string     `json:"location,omitempty"`
	SeasonKey      string     `json:"seasonKey"`
}

func (m Match) Clone() Match {
	out := m
	out.ParticipantIDs = make([]string, len(m.ParticipantIDs))
	copy(out.ParticipantIDs, m.ParticipantIDs)
	return out
}

// Championship is unique per (name, seasonKey); re-awarding the same pair
// replaces the prior record.
type Championship struct {
	ID        string `json:"id"`
	SeasonKey string `json:"seasonKey"`
	Name      string `json:"name"`
	WinnerID  string `json:"winnerId"`
	SecondID  string `json:"secondId,omitempty"`
	ThirdID   string `json:"thirdId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
