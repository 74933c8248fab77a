// Package order contains the Order aggregate and its status state machine.
//
// The aggregate owns the single authoritative status field and every mutation
// goes through a transition method that consults the legal transition table.
// Terminal orders (delivered, cancelled) reject all further mutation. The
// delivery estimate is fixed at creation and never revised.
package order
