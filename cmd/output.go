package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kamusis/skill-cortex/internal/search"
	"github.com/kamusis/skill-cortex/internal/tags"
)

// ── Unified output helpers ────────────────────────────────────────────────────
// All commands use these functions to ensure consistent icon usage and
// indentation throughout the CLI output.
//
// Icon semantics:
//   ✓  success / healthy
//   ✗  error / failure          (written to stderr)
//   ⚠  warning
//   ○  skipped / not applicable
//   -  not found / missing
//   ~  neutral info / state change

var (
	okIcon   = color.New(color.FgGreen).Sprint("✓")
	errIcon  = color.New(color.FgRed).Sprint("✗")
	warnIcon = color.New(color.FgYellow).Sprint("⚠")
	skipIcon = color.New(color.Faint).Sprint("○")
	missIcon = color.New(color.Faint).Sprint("-")
	infoIcon = color.New(color.FgCyan).Sprint("~")
	bold     = color.New(color.Bold).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
)

// printSection prints a top-level section header, e.g. "=== Scan ===".
func printSection(title string) {
	fmt.Printf("\n%s\n", bold("=== "+title+" ==="))
}

// printBullet prints a grouped-section bullet, e.g. "● Categories:".
func printBullet(title string) {
	fmt.Printf("\n● %s\n", title)
}

func printLine(icon, name, msg string) {
	if name == "" {
		fmt.Printf("  %s  %s\n", icon, msg)
	} else {
		fmt.Printf("  %s  [%s] %s\n", icon, name, msg)
	}
}

// printOK prints a success line.
//
//	name = "" → "  ✓  msg"
//	name set  → "  ✓  [name] msg"
func printOK(name, msg string) { printLine(okIcon, name, msg) }

// printErr prints an error line to stderr.
func printErr(name, msg string) {
	if name == "" {
		fmt.Fprintf(os.Stderr, "  %s  %s\n", errIcon, msg)
	} else {
		fmt.Fprintf(os.Stderr, "  %s  [%s] %s\n", errIcon, name, msg)
	}
}

// printWarn prints a warning line.
func printWarn(name, msg string) { printLine(warnIcon, name, msg) }

// printSkip prints a skipped / not-applicable line.
func printSkip(name, msg string) { printLine(skipIcon, name, msg) }

// printMiss prints a not-found / missing line.
func printMiss(name, msg string) { printLine(missIcon, name, msg) }

// printInfo prints a neutral informational / state-change line.
func printInfo(name, msg string) { printLine(infoIcon, name, msg) }

// printSkill prints one skill summary: id and tags, then the description.
func printSkill(s search.Summary) {
	line := s.SkillID + "  " + faint(tags.Format(s.Tags))
	if len(s.TagIssues) > 0 {
		printWarn("", line+"  "+strings.Join(s.TagIssues, " "))
	} else {
		printOK("", line)
	}
	if s.DescriptionSnapshot != "" {
		fmt.Printf("       %s\n", s.DescriptionSnapshot)
	}
}
