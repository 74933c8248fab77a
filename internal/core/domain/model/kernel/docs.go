// Package kernel contains shared value objects used by all domain aggregates:
// UUID identifiers, geographic points with great-circle distance, and delivery
// addresses. All types are immutable and constructor-validated; their zero
// values fail validation.
package kernel
