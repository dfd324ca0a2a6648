package metrics

type options struct {
	namespace string
	buckets   []float64
}

// Option configures New.
type Option func(*options)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		if namespace != "" {
			o.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for the run duration histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(o *options) {
		if len(buckets) > 0 {
			o.buckets = buckets
		}
	}
}
