// Package game implements the Texas Hold'em engine: the per-hand state
// machine, betting rules, side-pot resolution, AI decision policies and
// the invariant checks that keep chip accounting honest.
//
// One Engine owns one table. All mutation routes through ApplyAction,
// StartHand and AdvanceState; the engine is driven either synchronously
// (processAI true) or one transition at a time by an external pipeline
// that interleaves event emission between AI turns.
package game
