package main

// Short messages (one-liners)
const (
	MsgRootShort = "Create projects from project templates"
	MsgRootLong = `pastry creates projects from project templates.

A template is a directory tree (or a repository, or a zip archive)
whose file names and contents carry template expressions. pastry asks
for the template's variables, renders the tree and writes the result
next to you.`

	// Flag descriptions
	MsgFlagVerbose       = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagNoInput       = "Do not prompt, use the template's defaults"
	MsgFlagCheckout      = "Branch, tag or commit to check out after cloning"
	MsgFlagDirectory     = "Directory within the template source that holds the template"
	MsgFlagReplay        = "Reuse the context from the previous run instead of prompting"
	MsgFlagReplayFile    = "Replay from this file instead of the default record"
	MsgFlagOverwrite     = "Overwrite the output directory if it already exists"
	MsgFlagSkipExisting  = "Leave files that already exist in the output untouched"
	MsgFlagOutputDir     = "Where to create the project directory"
	MsgFlagConfigFile    = "User configuration file"
	MsgFlagDefaultConfig = "Ignore configuration files and use built-in defaults"
	MsgFlagAcceptHooks   = "Run template hooks: yes or no"
	MsgFlagListInstalled = "List the templates cached locally and exit"
	MsgFlagKeepOnFail    = "Do not delete the output directory when generation fails"
)
