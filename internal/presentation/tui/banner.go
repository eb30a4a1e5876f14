package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"   ____                                __  ___      __",
	"  / ___|__ _ _ __ ___  _ __  _   _ ___|  \\/  | __ _| |_ ___",
	" | |   / _` | '_ ` _ \\| '_ \\| | | / __| |\\/| |/ _` | __/ _ \\",
	" | |__| (_| | | | | | | |_) | |_| \\__ \\ |  | | (_| | ||  __/",
	"  \\____\\__,_|_| |_| |_| .__/ \\__,_|___/_|  |_|\\__,_|\\__\\___|",
	"                      |_|",
}

// Fudan-ish blue fading into teal.
var bannerColors = []string{"#1e3a8a", "#1d4ed8", "#2563eb", "#0ea5e9", "#06b6d4", "#14b8a6"}

// PrintBanner writes the campusmate banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(p.Color(bannerColors[i%len(bannerColors)])))
	}
	tag := "旦旦学姐 " + strings.TrimSpace(version)
	fmt.Fprintln(w, out.String("  "+tag).Faint())
	fmt.Fprintln(w)
}
