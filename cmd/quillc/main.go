// Command quillc drives the name-and-signature resolver from the command
// line: `quillc resolve <project-path>` loads a quill-mod.toml, runs the
// namer stub and the six-pass resolver over an empty forest (no source
// files are parsed), and reports diagnostics; `quillc version` prints the running version.
package main

import (
	"errors"
	"os"

	"github.com/ComedicChimera/olive"

	"quillc/ast"
	"quillc/common"
	"quillc/diagnostics"
	"quillc/driver"
	"quillc/project"
)

func main() {
	cli := olive.NewCLI("quillc", "quillc resolves names and signatures for Quill projects", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the resolver log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	resolveCmd := cli.AddSubcommand("resolve", "resolve names and signatures for a project", true)
	resolveCmd.AddPrimaryArg("project-path", "the path to the project directory", true)
	resolveCmd.AddFlag("sanity", "s", "run the debug-only post-resolution sanity check")

	cli.AddSubcommand("version", "print the quillc version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		diagnostics.PrintErrorMessage("CLI Usage Error", err)
		return
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "resolve":
		execResolveCommand(subResult)
	case "version":
		diagnostics.PrintInfoMessage("Quill Version", common.QuillVersion)
	}
}

func execResolveCommand(result *olive.ArgParseResult) {
	projectPath, ok := result.PrimaryArg()
	if !ok {
		diagnostics.PrintErrorMessage("CLI Usage Error", errors.New("missing project-path"))
		return
	}

	proj, err := project.Load(projectPath)
	if err != nil {
		diagnostics.PrintErrorMessage("Project Load Error", err)
		return
	}

	diagnostics.DisplayCompileHeader(proj.Name)

	diagnostics.DisplayBeginPhase("Resolving names and signatures")
	d := driver.New(proj)

	// Source parsing is out of scope for this tool (spec's Non-goal: no
	// file loading); an empty forest still exercises the full pipeline
	// wiring end to end, which is what this subcommand demonstrates.
	roots := []*ast.Root{}
	success := d.Resolve(roots)
	diagnostics.DisplayEndPhase(success)

	if result.HasFlag("sanity") {
		for _, violation := range d.SanityCheck(roots) {
			diagnostics.PrintWarningMessage("Sanity Check", violation)
		}
	}

	diagnostics.DisplayRunFinished(success, d.Diag.ErrorCount(), d.Diag.WarningCount())
}
