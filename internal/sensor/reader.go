// Package sensor simulates a small monitoring pipeline on top of a broker:
// producers publish readings to DataChannel, a consumer checks them against
// thresholds and forwards them to a sink once a status changer tells it to
// start receiving.
package sensor

import (
	"math/rand/v2"

	"github.com/goccy/go-json"
)

// DataChannel carries encoded readings from producers to consumers.
const DataChannel = "DataChannel"

type Reader interface {
	ReadTemperature() float64
	ReadHumidity() float64
	ReadCO2Concentration() float64
}

// Simulated returns uniformly distributed values in plausible ranges:
// temperature 0-30 °C, humidity 0-90 % and CO2 400-1000 ppm.
type Simulated struct{}

func (Simulated) ReadTemperature() float64      { return between(0, 30) }
func (Simulated) ReadHumidity() float64         { return between(0, 90) }
func (Simulated) ReadCO2Concentration() float64 { return between(400, 1000) }

func between(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

// Reading is the payload producers publish.
type Reading struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	CO2Concentration float64 `json:"co2Concentration"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

func (r Reading) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}
