// Package progression implements the QuestDo XP and level system.
// Levels are always derived from total XP through a fixed threshold table,
// never incremented in place — corrections and out-of-order awards cannot
// drift the stored level.
package progression

// levelTable holds the cumulative XP required for each level. Index i is the
// minimum total XP to be at level i+1; level 1 requires 0. The values are
// game content tuned for an accelerating curve — do not re-derive them from
// a formula.
var levelTable = []int64{
	0,      // L1
	100,    // L2
	250,    // L3
	450,    // L4
	700,    // L5
	1000,   // L6
	1400,   // L7
	1900,   // L8
	2500,   // L9
	3200,   // L10
	4000,   // L11
	5000,   // L12
	6200,   // L13
	7600,   // L14
	9200,   // L15
	11000,  // L16
	13000,  // L17
	15500,  // L18
	18500,  // L19
	22000,  // L20
	26000,  // L21
	30500,  // L22
	35500,  // L23
	41000,  // L24
	47000,  // L25
	54000,  // L26
	62000,  // L27
	71000,  // L28
	81000,  // L29
	92000,  // L30
}

// MaxLevel is the highest tabulated level. The table is the authority —
// there is no extrapolation past its last entry.
var MaxLevel = len(levelTable)

// LevelForXP returns the level for a given total XP: the highest level whose
// threshold the XP meets. Non-positive XP maps to level 1; XP past the last
// threshold caps at MaxLevel.
func LevelForXP(totalXP int64) int {
	level := 1
	for i := 1; i < len(levelTable); i++ {
		if totalXP < levelTable[i] {
			break
		}
		level = i + 1
	}
	return level
}

// XPForLevel returns the cumulative XP threshold for a level.
// Levels at or below 1 need 0 XP; levels past MaxLevel clamp to the last entry.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelTable[level-1]
}

// XPForNextLevel returns the XP span between the given level and the next
// one, or 0 at MaxLevel — no further progression is defined.
func XPForNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level >= MaxLevel {
		return 0
	}
	return levelTable[level] - levelTable[level-1]
}

// LevelProgress returns the fraction of the way from the given level to the
// next, clamped to [0,1]. At or beyond MaxLevel the progression is complete.
func LevelProgress(level int, totalXP int64) float64 {
	if level >= MaxLevel {
		return 1.0
	}
	if level < 1 {
		level = 1
	}
	span := levelTable[level] - levelTable[level-1]
	if span <= 0 {
		return 1.0
	}
	progress := float64(totalXP-levelTable[level-1]) / float64(span)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// CurrentXP returns the XP accumulated above the given level's threshold.
func CurrentXP(level int, totalXP int64) int64 {
	xp := totalXP - XPForLevel(level)
	if xp < 0 {
		return 0
	}
	return xp
}
