// Package framing turns a deck footprint into a framing plan: ledger,
// beams, posts, footings, joists, rim joists and blocking.
//
// # Pipeline
//
// [Engine.Calculate] runs a fixed sequence of stages over one build
// context:
//
//  1. size the joists for the full depth, adding mid-beams when no size
//     spans it
//  2. place the ledger, or a wall-side beam for floating and concrete decks
//  3. derive the outer beam line from the footprint outline
//  4. place the mid-beams
//  5. lay out joists, segmented over the mid-beams unless the deck falls
//     under the continuous 2x8 rule
//  6. run joists out to diagonal ledgers, cut them at outer diagonals and
//     clip them to the footprint
//  7. add end joists, outer rim, wall rim, diagonal rims and jog rims
//  8. trim beams at diagonal rims
//  9. add mid-span and picture-frame blocking
//  10. merge colinear beams and re-post them
//
// # Frame
//
// The primary ledger must be horizontal or vertical. All stages run in a
// frame rotated by quarter turns so the ledger lies along x with the deck
// on +y; results are rotated back before they are returned.
//
// # Errors
//
// Failures come back both as a coded error from [Deckframe/internal/errors]
// and as the Error field of the returned Components. A beam the tables
// cannot size is not a failure: the largest beam is used and BeamWarning
// says so.
package framing
