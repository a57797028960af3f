package observability

type Label struct {
	Key   string
	Value string
}

// MetricOpt describes an instrument. ConstLabels are fixed at registration,
// LabelKeys name the variable labels supplied on every record call.
type MetricOpt struct {
	Help        string
	Buckets     []float64
	ConstLabels []Label
	LabelKeys   []string
}
