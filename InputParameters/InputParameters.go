package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file. ghodss/yaml converts to JSON
// before decoding, so the json tags name the YAML keys.
type OperatorParameters struct {
	Title              string  `json:"Title"`
	AreaTolerance      float64 `json:"AreaTolerance"`
	GradientTolerance  float64 `json:"GradientTolerance"`
	WeightSumTolerance float64 `json:"WeightSumTolerance"`
	ClampCotangents    bool    `json:"ClampCotangents"`
	CotanBound         float64 `json:"CotanBound"`
	LumpedMass         bool    `json:"LumpedMass"`
	ParallelDegree     int     `json:"ParallelDegree"`
	Partitioner        string  `json:"Partitioner"` // "contiguous" or "metis"
	NumPartitions      int     `json:"NumPartitions"`
	TimeStep           float64 `json:"TimeStep"`
	Iterations         int     `json:"Iterations"`
	RescaleArea        bool    `json:"RescaleArea"`
}

func NewOperatorParameters() *OperatorParameters {
	return &OperatorParameters{
		Title:              "polylaplace",
		AreaTolerance:      1.e-7,
		GradientTolerance:  1.e-10,
		WeightSumTolerance: 1.e-8,
		CotanBound:         19.1,
		ParallelDegree:     1,
		Partitioner:        "contiguous",
		NumPartitions:      1,
		TimeStep:           1.e-3,
		Iterations:         1,
		RescaleArea:        true,
		LumpedMass:         true,
	}
}

// Parse overlays the YAML in data onto ip; keys not present keep their values.
func (ip *OperatorParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *OperatorParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5e\t\t= AreaTolerance\n", ip.AreaTolerance)
	fmt.Printf("%8.5e\t\t= GradientTolerance\n", ip.GradientTolerance)
	fmt.Printf("%8.5e\t\t= WeightSumTolerance\n", ip.WeightSumTolerance)
	fmt.Printf("[%v]\t\t\t= ClampCotangents\n", ip.ClampCotangents)
	if ip.ClampCotangents {
		fmt.Printf("%8.5f\t\t= CotanBound\n", ip.CotanBound)
	}
	fmt.Printf("[%v]\t\t\t= LumpedMass\n", ip.LumpedMass)
	fmt.Printf("[%d]\t\t\t\t= ParallelDegree\n", ip.ParallelDegree)
	fmt.Printf("[%s]\t\t= Partitioner, %d parts\n", ip.Partitioner, ip.NumPartitions)
	fmt.Printf("%8.5f\t\t= TimeStep\n", ip.TimeStep)
	fmt.Printf("[%d]\t\t\t\t= Iterations\n", ip.Iterations)
	fmt.Printf("[%v]\t\t\t= RescaleArea\n", ip.RescaleArea)
}
