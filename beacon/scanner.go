package beacon

type Scanner interface {

	// returns map from device address to its latest observation
	Scan() (map[string]Observation, error)
}

type Observation struct {
	Addr string

	// units: dBm
	RSSI int

	Value Value
}
