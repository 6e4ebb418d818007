package progression

// titleThreshold maps a level floor to the title shown from that level on.
// Titles change only at exact threshold levels — a step function, never
// interpolated.
type titleThreshold struct {
	Level int
	Title string
}

// titlesByLocale holds per-locale title tables, sorted ascending by level.
// Game content, like the level table.
var titlesByLocale = map[string][]titleThreshold{
	"en": {
		{1, "Novice"},
		{5, "Apprentice"},
		{10, "Adventurer"},
		{15, "Hero"},
		{20, "Champion"},
		{25, "Legend"},
		{30, "Grandmaster"},
	},
	"es": {
		{1, "Novato"},
		{5, "Aprendiz"},
		{10, "Aventurero"},
		{15, "Héroe"},
		{20, "Campeón"},
		{25, "Leyenda"},
		{30, "Gran Maestro"},
	},
}

// DefaultLocale is used when a locale has no title table.
const DefaultLocale = "en"

// TitleForLevel returns the display title for a level: the title of the
// highest threshold at or below it. Levels below the lowest threshold fall
// back to the lowest mapping; unknown locales fall back to English.
func TitleForLevel(level int, locale string) string {
	table, ok := titlesByLocale[locale]
	if !ok {
		table = titlesByLocale[DefaultLocale]
	}

	for i := len(table) - 1; i >= 0; i-- {
		if level >= table[i].Level {
			return table[i].Title
		}
	}
	return table[0].Title
}

// TitleLevels returns the threshold levels at which the title changes.
// Locale-independent: all locales share the same thresholds.
func TitleLevels() []int {
	table := titlesByLocale[DefaultLocale]
	levels := make([]int, len(table))
	for i, t := range table {
		levels[i] = t.Level
	}
	return levels
}
