package domain

// PortMap maps a datalogger's raw port labels to sensor-depth identifiers.
// The label of the timestamp column is present with an empty sensor id.
type PortMap map[string]string

// Has reports whether the port label is registered
func (p PortMap) Has(port string) bool {
	_, ok := p[port]
	return ok
}

// Sensor returns the sensor id for a port label
func (p PortMap) Sensor(port string) (string, bool) {
	s, ok := p[port]
	return s, ok
}

// SensorCount returns the number of ports mapped to a sensor
func (p PortMap) SensorCount() int {
	n := 0
	for _, s := range p {
		if s != "" {
			n++
		}
	}
	return n
}
