// Package main is the entry point for the valtrack CLI tool, which ingests
// Valorant match telemetry and computes per-agent, per-map, per-weapon and
// per-season performance aggregates for a tracked player.
package main

import "valtrack/cmd"

func main() {
	cmd.Execute()
}
