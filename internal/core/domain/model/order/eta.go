package order

import "math"

// Delivery estimate parameters. The estimate is computed once at order
// creation from the restaurant-to-destination distance and is never revised
// afterwards; live courier position during delivery is informational only.
const (
	// basePrepMinutes is the fixed preparation allowance added to every estimate.
	basePrepMinutes = 25

	// courierSpeedKmPerMinute is the assumed average courier speed (30 km/h).
	courierSpeedKmPerMinute = 0.5

	// minEstimateMinutes and maxEstimateMinutes clamp the estimate window.
	minEstimateMinutes = 25
	maxEstimateMinutes = 60
)

// EstimateDeliveryMinutes converts a restaurant-to-destination distance into
// an estimated delivery duration: travel time at courierSpeedKmPerMinute plus
// basePrepMinutes, clamped to [minEstimateMinutes, maxEstimateMinutes].
// Pickup orders use a zero distance and get the bare preparation allowance.
func EstimateDeliveryMinutes(distanceKm float64) int {
	minutes := basePrepMinutes + int(math.Round(distanceKm/courierSpeedKmPerMinute))

	if minutes < minEstimateMinutes {
		return minEstimateMinutes
	}
	if minutes > maxEstimateMinutes {
		return maxEstimateMinutes
	}
	return minutes
}
