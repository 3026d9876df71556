package diagnostics

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"quillc/ast"
	"quillc/common"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

func sprintf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

// PrintErrorMessage prints a standard Go error to the console.
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a warning message to the console.
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user.
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// display prints one diagnostic's banner, message, and (if it has a real
// source location) the underlined code selection.
func display(d Diagnostic) {
	if phaseSpinner != nil {
		displayEndPhase(false)
	}

	displayBanner(d)
	if d.Header != "" {
		fmt.Println(d.Header)
	}
	for _, line := range d.Lines {
		fmt.Println(line)
	}

	if !d.Loc.IsZero() {
		displayCodeSelection(d.Loc)
	}
}

func displayBanner(d Diagnostic) {
	fmt.Print("\n\n-- ")
	kindStr := d.Class.String()
	kindLen := len(kindStr)
	if d.Warning {
		WarnStyleBG.Print(kindStr + " Warning")
		kindLen += 9
	} else {
		ErrorStyleBG.Print(kindStr + " Error")
		kindLen += 7
	}

	fmt.Print(" ")

	fileName := ""
	if d.Loc.File != nil {
		fileName = filepath.Base(d.Loc.File.Path)
	}
	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > 50 {
		bannerLen = 50
	}
	dashCount := bannerLen - len(fileName) - kindLen - 1
	if dashCount < 0 {
		dashCount = 0
	}

	fmt.Print(strings.Repeat("-", dashCount) + " ")
	InfoColorFG.Println(fileName)
}

// displayCodeSelection opens the source file and underlines the span in
// loc, ported from the teacher's displayCodeSelection. Errors opening the
// file are swallowed -- by the time we're printing a diagnostic, failing
// to also render a source snippet is not worth aborting over.
func displayCodeSelection(loc ast.Loc) {
	if loc.File == nil {
		return
	}

	f, err := os.Open(loc.File.Path)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Println()

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanLines)
	lines := make([]string, loc.EndLn-loc.BeginLn+1)
	for lineNumber := 1; sc.Scan(); lineNumber++ {
		if lineNumber >= loc.BeginLn && lineNumber <= loc.EndLn {
			lines[lineNumber-loc.BeginLn] = sc.Text()
		}
	}

	minWhitespace := -1
	for _, line := range lines {
		leadingWhitespace := 0
		for _, c := range line {
			if c == ' ' {
				leadingWhitespace++
			} else if c == '\t' {
				leadingWhitespace += 4
			} else {
				break
			}
		}
		if minWhitespace == -1 || minWhitespace > leadingWhitespace {
			minWhitespace = leadingWhitespace
		}
	}
	if minWhitespace < 0 {
		minWhitespace = 0
	}

	maxLineNumberWidth := len(strconv.Itoa(loc.EndLn)) + 1
	lineNumberFmtStr := "%-" + strconv.Itoa(maxLineNumberWidth) + "v"

	for i, line := range lines {
		InfoColorFG.Print(fmt.Sprintf(lineNumberFmtStr, i+loc.BeginLn))
		fmt.Print("|  ")
		trimmed := line
		if minWhitespace <= len(line) {
			trimmed = line[minWhitespace:]
		}
		fmt.Println(strings.ReplaceAll(trimmed, "\t", "    "))

		fmt.Print(strings.Repeat(" ", maxLineNumberWidth), "|  ")
		startCol := loc.BeginCol - minWhitespace
		if startCol < 0 {
			startCol = 0
		}
		if i == 0 {
			fmt.Print(strings.Repeat(" ", startCol))
			if i == len(lines)-1 {
				width := loc.EndCol - loc.BeginCol
				if width < 1 {
					width = 1
				}
				ErrorColorFG.Print(strings.Repeat("^", width))
				fmt.Println()
			} else {
				width := len(line) - loc.BeginCol - minWhitespace
				if width < 1 {
					width = 1
				}
				ErrorColorFG.Println(strings.Repeat("^", width))
			}
		} else if i == len(lines)-1 {
			width := loc.EndCol - minWhitespace
			if width < 1 {
				width = 1
			}
			ErrorColorFG.Println(strings.Repeat("^", width))
		} else {
			width := len(line) - minWhitespace
			if width < 1 {
				width = 1
			}
			ErrorColorFG.Println(strings.Repeat("^", width))
		}
	}

	fmt.Println()
}

const fatalErrorPostlude = `
This is likely a bug in the checker.
Please open an issue and include a minimal reproduction.`

// Fatal reports an internal invariant violation -- reserved for bugs in
// quillc itself (e.g. P6's sanity check failing), never for user-induced
// errors, which always go through Queue.BeginError instead.
func Fatal(message string) {
	fmt.Print("\n\n")
	ErrorStyleBG.Print("Fatal Error ")
	ErrorColorFG.Println(message)
	InfoColorFG.Println(fatalErrorPostlude)
	os.Exit(1)
}

// -----------------------------------------------------------------------------
// Phase spinner, ported from the teacher's displayBeginPhase/displayEndPhase.

var phaseSpinner *pterm.SpinnerPrinter
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("ConstantsAndAncestors")

func DisplayCompileHeader(target string) {
	fmt.Print("quillc ")
	InfoColorFG.Print("v" + common.QuillVersion)
	fmt.Print(" -- resolving: ")
	InfoColorFG.Println(target)
}

func DisplayBeginPhase(phase string) {
	currentPhase = phase
	pad := maxPhaseLength - len(phase) + 2
	if pad < 1 {
		pad = 1
	}
	phaseText := phase + "..." + strings.Repeat(" ", pad)
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: SuccessStyleBG, Text: "Done"},
	}
	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix:       pterm.Prefix{Style: ErrorStyleBG, Text: "Fail"},
	}

	phaseSpinner.Start(phaseText)
	phaseStartTime = time.Now()
}

func displayEndPhase(success bool) {
	if phaseSpinner == nil {
		return
	}
	pad := maxPhaseLength - len(currentPhase) + 2
	if pad < 1 {
		pad = 1
	}
	if success {
		phaseSpinner.Success(currentPhase+strings.Repeat(" ", pad), fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()))
	} else {
		phaseSpinner.Fail(currentPhase + strings.Repeat(" ", pad))
	}
	phaseSpinner = nil
}

// DisplayEndPhase is the exported hook cmd/quillc calls once, after the
// whole resolution run, with whether that run succeeded.
func DisplayEndPhase(success bool) {
	displayEndPhase(success)
}

// DisplayRunFinished prints the teacher's closing "All done!"/"Oh no!" line.
func DisplayRunFinished(success bool, errorCount, warningCount int) {
	fmt.Print("\n")
	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")
	printCount(errorCount, "error", "errors", ErrorColorFG)
	fmt.Print(", ")
	printCount(warningCount, "warning", "warnings", WarnColorFG)
	fmt.Println(")")
}

func printCount(n int, singular, plural string, color pterm.Color) {
	if n == 0 {
		SuccessColorFG.Print(0)
	} else {
		color.Print(n)
	}
	if n == 1 {
		fmt.Print(" " + singular)
	} else {
		fmt.Print(" " + plural)
	}
}
