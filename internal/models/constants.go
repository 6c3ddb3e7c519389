// Package models contains the data types and constants shared by the game master.
package models

// Prompts sent by the conversation controller
const (
	// GenericSystemPrompt is prepended to every completion request, in addition
	// to the persona message that opens the transcript.
	GenericSystemPrompt = "You are a helpful assistant."

	// StartGamePrompt is the user message that opens a game
	StartGamePrompt = "Let's start the game!"

	// GameOverMarker is the text the persona is told to emit when a game ends
	GameOverMarker = "GAME OVER"
)

// Sampling defaults for completion requests
const (
	DefaultTemperature = 1.0
	DefaultMaxTokens   = 1000
)
