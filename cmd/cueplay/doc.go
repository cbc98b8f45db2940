// Command cueplay runs a cue list from a show file.
//
// The run command loads the show into a list layout and drives it from an
// interactive console, an OSC control surface, or both. Config and show
// subcommands create and check the files it reads.
package main
