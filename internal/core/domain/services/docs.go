// Package services contains domain services coordinating multiple
// aggregates. The Dispatcher matches confirmed delivery orders to available
// couriers by distance from the restaurant.
package services
