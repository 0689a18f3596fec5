// Package viz renders a probability board in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: a live board driven by a [sim.Simulation], redrawn every frame
//   - [Scene]: the [anim.Sink] that turns batch events into drawable state
//   - [Canvas]: Braille-based pixel canvas with one colour per cell
//   - [App]: preset picker in front of the live board
//
// # Key Bindings
//
//	Space/D - Drop a batch of balls
//	+/-     - More/fewer levels
//	B/b     - More/fewer balls
//	P/p     - Raise/lower the probability of bouncing right
//	]/[     - Faster/slower animation
//	T       - Cycle color themes
//	?       - Show help overlay
//	Q       - Quit
//
// Board parameters are locked while a batch is dropping; speed and theme
// can change at any time.
package viz
