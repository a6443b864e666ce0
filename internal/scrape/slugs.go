package scrape

import "collectabase/internal/textutil"

// platformSlugs maps normalized platform names to the price source's URL
// slugs. Platforms without an entry are searched without a console filter.
var platformSlugs = map[string]string{
	"playstation 5":           "playstation-5",
	"playstation 4":           "playstation-4",
	"playstation 3":           "playstation-3",
	"playstation 2":           "playstation-2",
	"playstation":             "playstation",
	"psp":                     "psp",
	"ps vita":                 "ps-vita",
	"xbox series x s":         "xbox-series-x",
	"xbox one":                "xbox-one",
	"xbox 360":                "xbox-360",
	"xbox":                    "xbox",
	"nintendo switch":         "nintendo-switch",
	"nintendo switch 2":       "nintendo-switch-2",
	"wii u":                   "wii-u",
	"wii":                     "wii",
	"gamecube":                "gamecube",
	"nintendo 64":             "nintendo-64",
	"snes":                    "super-nintendo",
	"nes":                     "nes",
	"game boy advance":        "gameboy-advance",
	"game boy color":          "gameboy-color",
	"game boy":                "gameboy",
	"nintendo 3ds":            "3ds",
	"nintendo ds":             "nintendo-ds",
	"sega dreamcast":          "sega-dreamcast",
	"sega saturn":             "sega-saturn",
	"sega genesis mega drive": "sega-genesis",
	"sega master system":      "sega-master-system",
	"sega game gear":          "game-gear",
}

// PlatformSlug resolves a free-text platform name to the source's slug, or
// "" when the platform is unknown.
func PlatformSlug(platform string) string {
	return platformSlugs[textutil.Normalize(platform)]
}
