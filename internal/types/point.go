// README: Geographic point encoded as a [lat, lng] pair on the wire.
package types

import (
	"encoding/json"
	"errors"
)

type Point struct {
	Lat float64
	Lng float64
}

var errBadPoint = errors.New("point must be a two-element array")

// The delivery providers exchange locations as bare two-element arrays,
// so Point marshals to [lat, lng] rather than an object.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errBadPoint
	}
	p.Lat, p.Lng = pair[0], pair[1]
	return nil
}
