package main

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"collectabase/internal/textutil"
)

var titleCaser = cases.Title(language.English)

// displayPlatform renders a normalized platform name for table output.
func displayPlatform(platform string) string {
	if platform == "" {
		return "-"
	}
	return titleCaser.String(platform)
}

func formatEUR(price *float64) string {
	if price == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *price)
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

func itoa(value int) string {
	return strconv.Itoa(value)
}

// normalizePlatformArg folds a user-typed platform into the normalized form
// stored in the catalog.
func normalizePlatformArg(platform string) string {
	return textutil.Normalize(platform)
}
