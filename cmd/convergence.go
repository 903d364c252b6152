/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polylaplace/polydiff"
	"github.com/notargets/polylaplace/polymesh"
)

type ModelConvergence struct {
	BaseN, Levels int
	Perturb       float64 // interior vertex jitter as a fraction of the grid spacing
	LumpedMass    bool
	CSVFile       string
}

// ConvergenceCmd represents the convergence command
var ConvergenceCmd = &cobra.Command{
	Use:   "convergence",
	Short: "Poisson convergence study on refined, perturbed quad grids",
	Long: `
Solves -Laplace(u) = f on the unit square for u = sin(pi x) sin(pi y) on a
sequence of refined grids with jittered interior vertices, then reports the
RMS and max vertex errors and the observed order of convergence.

polylaplace convergence -n 4 -l 4 -p 0.2 [-c study.csv]`,
	Run: func(cmd *cobra.Command, args []string) {
		mc := &ModelConvergence{}
		mc.BaseN, _ = cmd.Flags().GetInt("baseN")
		mc.Levels, _ = cmd.Flags().GetInt("levels")
		mc.Perturb, _ = cmd.Flags().GetFloat64("perturb")
		mc.LumpedMass, _ = cmd.Flags().GetBool("lumped")
		mc.CSVFile, _ = cmd.Flags().GetString("csvFile")
		defer startProfile().Stop()
		cs, err := RunConvergence(mc)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		cs.Print()
	},
}

func init() {
	rootCmd.AddCommand(ConvergenceCmd)
	ConvergenceCmd.Flags().IntP("baseN", "n", 4, "number of cells per side on the coarsest grid")
	ConvergenceCmd.Flags().IntP("levels", "l", 3, "number of grid levels, each refined by 2")
	ConvergenceCmd.Flags().Float64P("perturb", "p", 0.2, "interior vertex jitter as a fraction of the grid spacing")
	ConvergenceCmd.Flags().Bool("lumped", false, "use the lumped mass matrix for the right hand side")
	ConvergenceCmd.Flags().StringP("csvFile", "c", "", "file to write the convergence study to")
}

type ConvergenceStudy struct {
	title    string
	numPTS   []int
	h        []float64
	rms, max []float64
}

func NewConvergenceStudy(title string) *ConvergenceStudy {
	return &ConvergenceStudy{title: title}
}

func (cs *ConvergenceStudy) Add(numPTS int, h, rms, max float64) {
	cs.numPTS = append(cs.numPTS, numPTS)
	cs.h = append(cs.h, h)
	cs.rms = append(cs.rms, rms)
	cs.max = append(cs.max, max)
}

// Orders returns the observed convergence order between consecutive levels.
func (cs *ConvergenceStudy) Orders() (rmsOrder, maxOrder []float64) {
	for i := 1; i < len(cs.h); i++ {
		ratio := math.Log(cs.h[i-1] / cs.h[i])
		rmsOrder = append(rmsOrder, math.Log(cs.rms[i-1]/cs.rms[i])/ratio)
		maxOrder = append(maxOrder, math.Log(cs.max[i-1]/cs.max[i])/ratio)
	}
	return
}

func (cs *ConvergenceStudy) Print() {
	rmsOrder, maxOrder := cs.Orders()
	fmt.Printf("Title = %s\n", cs.title)
	for i := range cs.numPTS {
		fmt.Printf("%d, %8.5e, %8.5e, %8.5e", cs.numPTS[i], cs.h[i], cs.rms[i], cs.max[i])
		if i > 0 {
			fmt.Printf(", order %5.2f, %5.2f", rmsOrder[i-1], maxOrder[i-1])
		}
		fmt.Printf("\n")
	}
}

func (cs *ConvergenceStudy) WriteCSV(w io.Writer) (err error) {
	cw := csv.NewWriter(w)
	if err = cw.Write([]string{"title", "numPTS", "h", "rms", "max"}); err != nil {
		return
	}
	for i := range cs.numPTS {
		rec := []string{
			cs.title,
			strconv.Itoa(cs.numPTS[i]),
			strconv.FormatFloat(cs.h[i], 'g', -1, 64),
			strconv.FormatFloat(cs.rms[i], 'g', -1, 64),
			strconv.FormatFloat(cs.max[i], 'g', -1, 64),
		}
		if err = cw.Write(rec); err != nil {
			return
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads studies written by WriteCSV, keyed by title.
func ReadCSV(r io.Reader) (studies map[string]*ConvergenceStudy, err error) {
	var (
		records [][]string
		cs      *ConvergenceStudy
		ok      bool
	)
	studies = make(map[string]*ConvergenceStudy)
	if records, err = csv.NewReader(bufio.NewReader(r)).ReadAll(); err != nil {
		return
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		var (
			vals [3]float64
			npts int
		)
		if len(rec) != 5 {
			return nil, fmt.Errorf("record %d: expected 5 fields, got %d", i, len(rec))
		}
		if npts, err = strconv.Atoi(rec[1]); err != nil {
			return
		}
		for k := range vals {
			if vals[k], err = strconv.ParseFloat(rec[2+k], 64); err != nil {
				return
			}
		}
		if cs, ok = studies[rec[0]]; !ok {
			cs = NewConvergenceStudy(rec[0])
			studies[rec[0]] = cs
		}
		cs.Add(npts, vals[0], vals[1], vals[2])
	}
	return
}

func RunConvergence(mc *ModelConvergence) (cs *ConvergenceStudy, err error) {
	if mc.BaseN < 1 || mc.Levels < 1 {
		return nil, fmt.Errorf("need at least one level of at least one cell, got n=%d, levels=%d", mc.BaseN, mc.Levels)
	}
	var (
		cfg   = polydiff.DefaultConfig()
		rng   = rand.New(rand.NewSource(1))
		exact = func(p r3.Vec) float64 { return math.Sin(math.Pi*p.X) * math.Sin(math.Pi*p.Y) }
		rhs   = func(p r3.Vec) float64 { return 2 * math.Pi * math.Pi * exact(p) }
	)
	cs = NewConvergenceStudy(fmt.Sprintf("poisson-quads-perturb-%g", mc.Perturb))
	for level, n := 0, mc.BaseN; level < mc.Levels; level, n = level+1, 2*n {
		var (
			h          = 1. / float64(n)
			mesh       = polymesh.NewQuadGrid(n, n, h)
			isBoundary = mesh.BoundaryVertices()
			u          []float64
		)
		for v, b := range isBoundary {
			if !b {
				mesh.Vertices[v].X += mc.Perturb * h * (rng.Float64() - 0.5)
				mesh.Vertices[v].Y += mc.Perturb * h * (rng.Float64() - 0.5)
			}
		}
		if u, err = polydiff.SolvePoisson(mesh, cfg, mc.LumpedMass, rhs, exact); err != nil {
			return
		}
		var rms, maxErr float64
		for v, p := range mesh.Vertices {
			e := math.Abs(u[v] - exact(p))
			rms += e * e
			maxErr = math.Max(maxErr, e)
		}
		cs.Add(mesh.NumVertices(), h, math.Sqrt(rms/float64(mesh.NumVertices())), maxErr)
	}
	if len(mc.CSVFile) != 0 {
		var f *os.File
		if f, err = os.Create(mc.CSVFile); err != nil {
			return
		}
		if err = cs.WriteCSV(f); err != nil {
			f.Close()
			return
		}
		err = f.Close()
	}
	return
}
