package config

const (
	DefaultColumn       = "transferDuration"
	DefaultBins         = 10
	DefaultThresholdPct = 10.0
	DefaultWorkers      = 1
	DefaultAddr         = ":8080"
	DefaultLogLevel     = "info"

	DataExt = ".dat"
	PlotExt = ".pdf"
)

type Defaults struct {
	Column       string
	Bins         int
	ThresholdPct float64
	Workers      int
	Addr         string
	LogLevel     string
}

func GetDefaults() *Defaults {
	return &Defaults{
		Column:       DefaultColumn,
		Bins:         DefaultBins,
		ThresholdPct: DefaultThresholdPct,
		Workers:      DefaultWorkers,
		Addr:         DefaultAddr,
		LogLevel:     DefaultLogLevel,
	}
}
