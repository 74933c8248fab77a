// Package courier contains the Courier aggregate: availability status, the
// binding to at most one active order, last reported position, and the
// completed-delivery counter. Busy is only entered through Bind, which is
// what keeps status and order binding in lockstep.
package courier
