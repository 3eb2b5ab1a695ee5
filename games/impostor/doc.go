/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package impostor is the game controller for a pass-the-device impostor
// game.
//
// One device goes around the table. Every player privately sees either the
// shared keyword (crew) or that they are an impostor, then the group votes
// players out one at a time:
//   - crew wins once no impostor is left alive
//   - impostors win once they are as many as the crew still alive
//
// All state sits in a Session value. Transitions are value methods, or the
// Apply reducer, returning the next Session; nothing here blocks, logs, or
// touches shared state. Render turns a Session into the View for its screen.
package impostor
