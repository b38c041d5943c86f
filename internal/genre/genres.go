package genre

// validGenres is the vocabulary the inference stage understands.
// Kept lexicographically sorted: substring matching iterates this
// slice in order, which makes the tie-break deterministic.
var validGenres = []string{
	"acoustic",
	"afrobeat",
	"alternative rock",
	"ambient",
	"ballad",
	"blues",
	"bossa nova",
	"chill",
	"classical",
	"country",
	"dance",
	"dancehall",
	"disco",
	"dream pop",
	"drum and bass",
	"dubstep",
	"edm",
	"electronic",
	"emo",
	"experimental",
	"folk",
	"funk",
	"garage",
	"gospel",
	"grunge",
	"hard rock",
	"heavy metal",
	"hip-hop",
	"house",
	"indie",
	"indie pop",
	"indie rock",
	"industrial",
	"instrumental",
	"jazz",
	"k-pop",
	"latin",
	"lo-fi",
	"metal",
	"new wave",
	"opera",
	"orchestral",
	"pop",
	"pop rock",
	"psychedelic",
	"punk",
	"r&b",
	"rap",
	"reggae",
	"reggaeton",
	"rock",
	"salsa",
	"singer-songwriter",
	"ska",
	"soul",
	"soundtrack",
	"swing",
	"synthpop",
	"techno",
	"trance",
	"trap",
	"trip-hop",
}

// aliases maps common free-text spellings to vocabulary entries.
// An alias only applies when its target is in the valid set.
var aliases = map[string]string{
	"hiphop":            "hip-hop",
	"hip hop":           "hip-hop",
	"rb":                "r&b",
	"randb":             "r&b",
	"rnb":               "r&b",
	"rhythm and blues":  "r&b",
	"electronica":       "electronic",
	"classical music":   "classical",
	"pop music":         "pop",
	"rock music":        "rock",
	"lofi":              "lo-fi",
	"kpop":              "k-pop",
	"drum n bass":       "drum and bass",
	"dnb":               "drum and bass",
}
