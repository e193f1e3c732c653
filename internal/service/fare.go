package service

import "math"

const earthRadiusKm = 6371.0

// FareConfig contains the linear fare model parameters.
type FareConfig struct {
	BaseFare    float64 // flat component of every estimate
	PerKmRate   float64 // per-kilometer component
	MinimumFare float64 // floor applied after the linear model
}

// DefaultFareConfig returns the default fare model.
func DefaultFareConfig() FareConfig {
	return FareConfig{
		BaseFare:    2.0,
		PerKmRate:   0.75,
		MinimumFare: 5.0,
	}
}

// FareEstimator computes trip distance and the estimated fare. The estimate
// is computed once at trip creation and never recomputed afterwards.
type FareEstimator struct {
	cfg FareConfig
}

// NewFareEstimator creates a new FareEstimator.
func NewFareEstimator(cfg FareConfig) *FareEstimator {
	return &FareEstimator{cfg: cfg}
}

// Estimate returns the great-circle distance in kilometers between pickup
// and destination and the fare for that distance.
func (e *FareEstimator) Estimate(pickupLat, pickupLng, destLat, destLng float64) (distanceKm, fare float64) {
	distanceKm = haversineKm(pickupLat, pickupLng, destLat, destLng)

	fare = e.cfg.BaseFare + e.cfg.PerKmRate*distanceKm
	if fare < e.cfg.MinimumFare {
		fare = e.cfg.MinimumFare
	}

	return distanceKm, fare
}

// haversineKm returns the great-circle distance in kilometers between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
