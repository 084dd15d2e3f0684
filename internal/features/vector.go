package features

// MinModelFeatures is the minimum vector size before a vector is considered
// complete enough for model inference; smaller vectors force rule-only logic.
const MinModelFeatures = 10

// Vector is an ordered mapping from feature name to value. Order is
// insertion order, so the same extraction path always produces the same
// layout for model input.
type Vector struct {
	names  []string
	values map[string]float64

	// Degraded is set when any feature had to fall back to a neutral
	// default because of a numeric failure.
	Degraded bool
}

// NewVector creates an empty feature vector.
func NewVector() *Vector {
	return &Vector{values: make(map[string]float64)}
}

// Set adds or overwrites a feature value.
func (v *Vector) Set(name string, value float64) {
	if _, ok := v.values[name]; !ok {
		v.names = append(v.names, name)
	}
	v.values[name] = value
}

// Get returns a feature value by name.
func (v *Vector) Get(name string) (float64, bool) {
	value, ok := v.values[name]
	return value, ok
}

// Len returns the number of features present.
func (v *Vector) Len() int { return len(v.names) }

// Names returns the feature names in insertion order.
func (v *Vector) Names() []string { return v.names }

// Values returns the feature values in insertion order, the layout handed
// to model scalers.
func (v *Vector) Values() []float64 {
	out := make([]float64, len(v.names))
	for i, name := range v.names {
		out[i] = v.values[name]
	}
	return out
}

// ModelUsable reports whether the vector is complete enough for model
// inference.
func (v *Vector) ModelUsable() bool {
	return v != nil && v.Len() >= MinModelFeatures
}

// Map returns a plain map copy, used for trade record snapshots.
func (v *Vector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.names))
	for name, value := range v.values {
		out[name] = value
	}
	return out
}
